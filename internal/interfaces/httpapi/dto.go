package httpapi

import (
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

type teamMemberDTO struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar,omitempty"`
	JoinedAt    time.Time `json:"joinedAt"`
	Role        string    `json:"role"`
}

type teamStatsDTO struct {
	TotalPoints   int     `json:"totalPoints"`
	MatchesPlayed int     `json:"matchesPlayed"`
	Wins          int     `json:"wins"`
	Podiums       int     `json:"podiums,omitempty"`
	TopFives      int     `json:"topFives,omitempty"`
	BestRank      int     `json:"bestRank,omitempty"`
	AverageRank   float64 `json:"averageRank,omitempty"`
}

type teamDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Members   []teamMemberDTO `json:"members"`
	Stats     teamStatsDTO    `json:"stats"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

type rankedTeamDTO struct {
	Rank int     `json:"rank"`
	Team teamDTO `json:"team"`
}

type paginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type teamPageDTO struct {
	Items      []rankedTeamDTO `json:"items"`
	Pagination paginationDTO   `json:"pagination"`
}

type memberPerformanceDTO struct {
	UserID           string `json:"userId"`
	FantasyTeamID    string `json:"fantasyTeamId,omitempty"`
	FantasyPoints    int    `json:"fantasyPoints"`
	PredictionPoints int    `json:"predictionPoints"`
	TotalPoints      int    `json:"totalPoints"`
	BonusPoints      int    `json:"bonusPoints"`
}

type performanceDTO struct {
	ID              string                 `json:"id"`
	TeamID          string                 `json:"teamId"`
	MatchID         string                 `json:"matchId"`
	Members         []memberPerformanceDTO `json:"members"`
	TeamTotalPoints int                    `json:"teamTotalPoints"`
	Rank            int                    `json:"rank,omitempty"`
	BonusAwarded    int                    `json:"bonusAwarded"`
	Status          string                 `json:"status"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type historyPageDTO struct {
	Items      []performanceDTO `json:"items"`
	Pagination paginationDTO    `json:"pagination"`
}

type queueJoinDTO struct {
	Matched      bool     `json:"matched"`
	Team         *teamDTO `json:"team,omitempty"`
	Position     int      `json:"position,omitempty"`
	TotalWaiting int      `json:"totalWaiting,omitempty"`
	NeedMore     int      `json:"needMore,omitempty"`
}

type queueStatusDTO struct {
	State        string   `json:"state"`
	Team         *teamDTO `json:"team,omitempty"`
	Position     int      `json:"position,omitempty"`
	TotalWaiting int      `json:"totalWaiting,omitempty"`
	NeedMore     int      `json:"needMore,omitempty"`
}

func teamToDTO(team permanentteam.Team) teamDTO {
	members := make([]teamMemberDTO, 0, len(team.Members))
	for _, m := range team.Members {
		members = append(members, teamMemberDTO{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Avatar:      m.Avatar,
			JoinedAt:    m.JoinedAt,
			Role:        string(m.Role),
		})
	}

	return teamDTO{
		ID:      team.ID,
		Name:    team.Name,
		Members: members,
		Stats: teamStatsDTO{
			TotalPoints:   team.Stats.TotalPoints,
			MatchesPlayed: team.Stats.MatchesPlayed,
			Wins:          team.Stats.Wins,
			Podiums:       team.Stats.Podiums,
			TopFives:      team.Stats.TopFives,
			BestRank:      team.Stats.BestRank,
			AverageRank:   team.Stats.AverageRank,
		},
		IsActive:  team.IsActive,
		CreatedAt: team.CreatedAt,
	}
}

func teamPageToDTO(page usecase.TeamPage) teamPageDTO {
	items := make([]rankedTeamDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, rankedTeamDTO{Rank: item.Rank, Team: teamToDTO(item.Team)})
	}

	return teamPageDTO{Items: items, Pagination: paginationToDTO(page.Pagination)}
}

func performanceToDTO(perf performance.Performance) performanceDTO {
	members := make([]memberPerformanceDTO, 0, len(perf.MemberPerformances))
	for _, m := range perf.MemberPerformances {
		members = append(members, memberPerformanceDTO{
			UserID:           m.UserID,
			FantasyTeamID:    m.FantasyTeamID,
			FantasyPoints:    m.FantasyPoints,
			PredictionPoints: m.PredictionPoints,
			TotalPoints:      m.TotalPoints,
			BonusPoints:      m.BonusPoints,
		})
	}

	return performanceDTO{
		ID:              perf.ID,
		TeamID:          perf.TeamID,
		MatchID:         perf.MatchID,
		Members:         members,
		TeamTotalPoints: perf.TeamTotalPoints,
		Rank:            perf.Rank,
		BonusAwarded:    perf.BonusAwarded,
		Status:          string(perf.Status),
		UpdatedAt:       perf.UpdatedAt,
	}
}

func historyPageToDTO(page usecase.HistoryPage) historyPageDTO {
	items := make([]performanceDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, performanceToDTO(item))
	}

	return historyPageDTO{Items: items, Pagination: paginationToDTO(page.Pagination)}
}

func paginationToDTO(p usecase.Pagination) paginationDTO {
	return paginationDTO{Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages}
}

func queueJoinToDTO(result usecase.QueueJoinResult) queueJoinDTO {
	dto := queueJoinDTO{
		Matched:      result.Matched,
		Position:     result.Position,
		TotalWaiting: result.TotalWaiting,
		NeedMore:     result.NeedMore,
	}
	if result.Matched {
		team := teamToDTO(result.Team)
		dto.Team = &team
	}

	return dto
}

func queueStatusToDTO(status usecase.QueueStatus) queueStatusDTO {
	dto := queueStatusDTO{
		State:        string(status.State),
		Position:     status.Position,
		TotalWaiting: status.TotalWaiting,
		NeedMore:     status.NeedMore,
	}
	if status.Team != nil {
		team := teamToDTO(*status.Team)
		dto.Team = &team
	}

	return dto
}
