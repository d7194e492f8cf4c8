package memory

import "github.com/mapl11/fantasy-cricket/internal/domain/user"

// SeedUsers returns enough accounts to form two full teams locally.
func SeedUsers() []user.User {
	return []user.User{
		{ID: "user-001", DisplayName: "Arjun Mehta", Avatar: "https://img.example/avatars/1.png"},
		{ID: "user-002", DisplayName: "Sana Iqbal", Avatar: "https://img.example/avatars/2.png"},
		{ID: "user-003", DisplayName: "Dinesh Perera", Avatar: "https://img.example/avatars/3.png"},
		{ID: "user-004", DisplayName: "Tom Blake", Avatar: "https://img.example/avatars/4.png"},
		{ID: "user-005", DisplayName: "Ravi Chandran", Avatar: "https://img.example/avatars/5.png"},
		{ID: "user-006", DisplayName: "Meera Nair", Avatar: "https://img.example/avatars/6.png"},
		{ID: "user-007", DisplayName: "Hasan Ali", Avatar: "https://img.example/avatars/7.png"},
		{ID: "user-008", DisplayName: "Liam Carter", Avatar: "https://img.example/avatars/8.png"},
		{ID: "user-009", DisplayName: "Priya Sharma", Avatar: "https://img.example/avatars/9.png"},
	}
}
