package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mapl11/fantasy-cricket/internal/domain/notification"
	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/scoring"
	"github.com/mapl11/fantasy-cricket/internal/domain/user"
	idgen "github.com/mapl11/fantasy-cricket/internal/platform/id"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
)

// DefaultFixtureWinBonus is the payout for winning a bracket fixture.
// Ties split it evenly between both sides.
const DefaultFixtureWinBonus = 50

// statsBonusMultiplier amplifies the awarded bonus inside the team's
// lifetime points delta: the registry receives teamTotalPoints + bonus*4.
const statsBonusMultiplier = 4

const defaultSweepWorkers = 4

// TeamScoringServiceConfig carries the policy knobs for bonus resolution.
type TeamScoringServiceConfig struct {
	Policy          scoring.Policy
	Bracket         []scoring.FixturePair
	FixtureWinBonus int
	RankTiers       scoring.RankBonusTiers
	SweepWorkers    int
}

// TeamScoringService drives the per-match pipeline: registration, points
// aggregation, and bonus award. Re-entrancy safety comes from the
// performance-record status machine, not from locks: award logic only
// touches records in the active state and always lands them on completed.
type TeamScoringService struct {
	teamRepo permanentteam.Repository
	perfRepo performance.Repository
	userRepo user.Repository
	scores   scoring.Source
	notifier notification.Notifier
	idGen    idgen.Generator
	logger   *logging.Logger
	cfg      TeamScoringServiceConfig
	now      func() time.Time
}

func NewTeamScoringService(
	teamRepo permanentteam.Repository,
	perfRepo performance.Repository,
	userRepo user.Repository,
	scores scoring.Source,
	notifier notification.Notifier,
	idGen idgen.Generator,
	logger *logging.Logger,
	cfg TeamScoringServiceConfig,
) *TeamScoringService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	if cfg.Policy == "" {
		cfg.Policy = scoring.PolicyFixture
	}
	if len(cfg.Bracket) == 0 {
		cfg.Bracket = scoring.DefaultBracket()
	}
	if cfg.FixtureWinBonus <= 0 {
		cfg.FixtureWinBonus = DefaultFixtureWinBonus
	}
	if cfg.RankTiers == (scoring.RankBonusTiers{}) {
		cfg.RankTiers = scoring.DefaultRankBonusTiers()
	}
	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = defaultSweepWorkers
	}

	return &TeamScoringService{
		teamRepo: teamRepo,
		perfRepo: perfRepo,
		userRepo: userRepo,
		scores:   scores,
		notifier: notifier,
		idGen:    idGen,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RegisterForMatch links a team to a match by snapshotting its current
// membership into a fresh pending performance record. Idempotent: an
// existing record for the pair is returned unchanged.
func (s *TeamScoringService) RegisterForMatch(ctx context.Context, teamID, matchID string) (performance.Performance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoringService.RegisterForMatch")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	matchID = strings.TrimSpace(matchID)
	if teamID == "" || matchID == "" {
		return performance.Performance{}, fmt.Errorf("%w: team id and match id are required", ErrInvalidInput)
	}

	existing, found, err := s.perfRepo.GetByTeamAndMatch(ctx, teamID, matchID)
	if err != nil {
		return performance.Performance{}, fmt.Errorf("get performance: %w", err)
	}
	if found {
		return existing, nil
	}

	team, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return performance.Performance{}, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return performance.Performance{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	perfID, err := s.idGen.NewID()
	if err != nil {
		return performance.Performance{}, fmt.Errorf("generate performance id: %w", err)
	}

	now := s.now().UTC()
	members := make([]performance.MemberPerformance, 0, len(team.Members))
	for _, m := range team.Members {
		members = append(members, performance.MemberPerformance{UserID: m.UserID})
	}

	perf := performance.Performance{
		ID:                 perfID,
		TeamID:             teamID,
		MatchID:            matchID,
		MemberPerformances: members,
		Status:             performance.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := perf.Validate(); err != nil {
		return performance.Performance{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.perfRepo.Create(ctx, perf); err != nil {
		return performance.Performance{}, fmt.Errorf("create performance: %w", err)
	}

	s.logger.InfoContext(ctx, "team registered for match",
		"team_id", teamID,
		"match_id", matchID,
	)

	return perf, nil
}

// AutoRegisterEligibleTeams is a reconciliation sweep: every active team with
// at least one member holding a fantasy entry for the match gets a
// performance record, covering teams whose registration path was skipped.
// Per-team failures are logged and skipped so one bad record cannot block
// scoring the rest of the match.
func (s *TeamScoringService) AutoRegisterEligibleTeams(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoringService.AutoRegisterEligibleTeams")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	entrants, err := s.scores.UsersWithFantasyEntry(ctx, matchID)
	if err != nil {
		return fmt.Errorf("list users with fantasy entry: %w", err)
	}
	if len(entrants) == 0 {
		s.logger.InfoContext(ctx, "no fantasy entries for match", "match_id", matchID)
		return nil
	}
	entrantSet := make(map[string]struct{}, len(entrants))
	for _, id := range entrants {
		entrantSet[id] = struct{}{}
	}

	teams, err := s.teamRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active teams: %w", err)
	}

	eligible := make([]permanentteam.Team, 0, len(teams))
	for _, team := range teams {
		for _, m := range team.Members {
			if _, ok := entrantSet[m.UserID]; ok {
				eligible = append(eligible, team)
				break
			}
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	pool, err := ants.NewPool(s.cfg.SweepWorkers)
	if err != nil {
		return fmt.Errorf("create sweep worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, team := range eligible {
		team := team
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if _, regErr := s.RegisterForMatch(ctx, team.ID, matchID); regErr != nil {
				s.logger.ErrorContext(ctx, "auto-register team failed",
					"team_id", team.ID,
					"match_id", matchID,
					"error", regErr,
				)
			}
		}
		if submitErr := pool.Submit(task); submitErr != nil {
			task()
		}
	}
	wg.Wait()

	return nil
}

// RecomputeForMatch refreshes every pending or active record for the match
// from the external score sources. Completed records are never reopened;
// recomputation fully overwrites prior values, so repeated calls before
// fixture resolution are drift-free. Refreshed totals go out to the match
// room as a score update.
func (s *TeamScoringService) RecomputeForMatch(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoringService.RecomputeForMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	perfs, err := s.perfRepo.ListByMatchStatuses(ctx, matchID, performance.StatusPending, performance.StatusActive)
	if err != nil {
		return fmt.Errorf("list performances: %w", err)
	}

	for p := range perfs {
		perf := &perfs[p]
		teamTotal := 0
		for i := range perf.MemberPerformances {
			member := &perf.MemberPerformances[i]

			entry, hasEntry, err := s.scores.FantasyEntry(ctx, member.UserID, matchID)
			if err != nil {
				return fmt.Errorf("fantasy entry user=%s: %w", member.UserID, err)
			}
			predictionPoints, hasPrediction, err := s.scores.PredictionPoints(ctx, member.UserID, matchID)
			if err != nil {
				return fmt.Errorf("prediction points user=%s: %w", member.UserID, err)
			}

			member.FantasyPoints = 0
			member.FantasyTeamID = ""
			if hasEntry {
				member.FantasyPoints = entry.Points
				member.FantasyTeamID = entry.FantasyTeamID
			}
			member.PredictionPoints = 0
			if hasPrediction {
				member.PredictionPoints = predictionPoints
			}
			member.TotalPoints = member.FantasyPoints + member.PredictionPoints
			teamTotal += member.TotalPoints
		}

		perf.TeamTotalPoints = teamTotal
		perf.Status = performance.StatusActive
		perf.UpdatedAt = s.now().UTC()
		if err := s.perfRepo.Update(ctx, *perf); err != nil {
			return fmt.Errorf("update performance team=%s: %w", perf.TeamID, err)
		}

		s.logger.DebugContext(ctx, "team points recomputed",
			"team_id", perf.TeamID,
			"match_id", matchID,
			"team_total", teamTotal,
		)
	}

	if len(perfs) > 0 {
		totals := make([]map[string]any, 0, len(perfs))
		for _, perf := range perfs {
			totals = append(totals, map[string]any{
				"teamId":          perf.TeamID,
				"teamTotalPoints": perf.TeamTotalPoints,
			})
		}
		s.notifier.BroadcastToMatch(ctx, matchID, notification.EventScoreUpdate, map[string]any{
			"matchId": matchID,
			"teams":   totals,
		})
	}

	return nil
}

// AwardBonuses resolves the configured scoring policy over the match's
// active records, distributes bonus points to members, and folds the
// amplified delta into each team's cumulative stats.
func (s *TeamScoringService) AwardBonuses(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoringService.AwardBonuses")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	perfs, err := s.perfRepo.ListByMatchStatuses(ctx, matchID, performance.StatusActive)
	if err != nil {
		return fmt.Errorf("list active performances: %w", err)
	}
	if len(perfs) == 0 {
		s.logger.InfoContext(ctx, "no active performances to award", "match_id", matchID)
		return nil
	}

	switch s.cfg.Policy {
	case scoring.PolicyRank:
		return s.awardByRank(ctx, matchID, perfs)
	default:
		return s.awardByFixtures(ctx, matchID, perfs)
	}
}

func (s *TeamScoringService) awardByFixtures(ctx context.Context, matchID string, perfs []performance.Performance) error {
	teamIDs := make([]string, 0, len(perfs))
	for _, perf := range perfs {
		teamIDs = append(teamIDs, perf.TeamID)
	}
	teams, err := s.teamRepo.GetByIDs(ctx, teamIDs)
	if err != nil {
		return fmt.Errorf("load teams for bracket: %w", err)
	}
	teamByID := make(map[string]permanentteam.Team, len(teams))
	perfByTeamName := make(map[string]*performance.Performance, len(perfs))
	for _, team := range teams {
		teamByID[team.ID] = team
	}
	for i := range perfs {
		if team, ok := teamByID[perfs[i].TeamID]; ok {
			perfByTeamName[team.Name] = &perfs[i]
		}
	}

	winBonus := s.cfg.FixtureWinBonus
	processed := make(map[string]struct{}, len(perfs))

	for _, pair := range s.cfg.Bracket {
		home := perfByTeamName[pair.HomeTeamName]
		away := perfByTeamName[pair.AwayTeamName]
		if home == nil && away == nil {
			continue
		}

		homeBonus, awayBonus := 0, 0
		switch {
		case home != nil && away == nil:
			homeBonus = winBonus
		case home == nil && away != nil:
			awayBonus = winBonus
		case home.TeamTotalPoints > away.TeamTotalPoints:
			homeBonus = winBonus
		case away.TeamTotalPoints > home.TeamTotalPoints:
			awayBonus = winBonus
		default:
			homeBonus = winBonus / 2
			awayBonus = winBonus / 2
		}

		if home != nil {
			s.awardToTeam(ctx, matchID, home, homeBonus, 0)
			processed[home.TeamID] = struct{}{}
		}
		if away != nil {
			s.awardToTeam(ctx, matchID, away, awayBonus, 0)
			processed[away.TeamID] = struct{}{}
		}
	}

	// Teams with a record but no bracket slot still complete with zero bonus.
	for i := range perfs {
		if _, done := processed[perfs[i].TeamID]; !done {
			s.awardToTeam(ctx, matchID, &perfs[i], 0, 0)
		}
	}

	for _, perf := range perfs {
		outcome := permanentteam.MatchOutcome{
			PointsDelta: perf.TeamTotalPoints + perf.BonusAwarded*statsBonusMultiplier,
			Win:         perf.BonusAwarded == winBonus,
		}
		if err := s.teamRepo.ApplyMatchOutcome(ctx, perf.TeamID, outcome); err != nil {
			s.logger.ErrorContext(ctx, "apply match outcome failed",
				"team_id", perf.TeamID,
				"match_id", matchID,
				"error", err,
			)
		}
	}

	return nil
}

func (s *TeamScoringService) awardByRank(ctx context.Context, matchID string, perfs []performance.Performance) error {
	sort.SliceStable(perfs, func(i, j int) bool {
		return perfs[i].TeamTotalPoints > perfs[j].TeamTotalPoints
	})

	teamCount := len(perfs)
	for i := range perfs {
		rank := i + 1
		bonus := s.cfg.RankTiers.BonusFor(rank, teamCount)
		s.awardToTeam(ctx, matchID, &perfs[i], bonus, rank)
	}

	for _, perf := range perfs {
		outcome := permanentteam.MatchOutcome{
			PointsDelta: perf.TeamTotalPoints + perf.BonusAwarded*statsBonusMultiplier,
			Win:         perf.Rank == 1,
			Rank:        perf.Rank,
		}
		if err := s.teamRepo.ApplyMatchOutcome(ctx, perf.TeamID, outcome); err != nil {
			s.logger.ErrorContext(ctx, "apply match outcome failed",
				"team_id", perf.TeamID,
				"match_id", matchID,
				"error", err,
			)
		}
	}

	return nil
}

// awardToTeam stamps the bonus on the record and its members, updates each
// member's cumulative counters, notifies them, and forces the record to
// completed. Every path ends on completed: that is the double-award guard.
func (s *TeamScoringService) awardToTeam(ctx context.Context, matchID string, perf *performance.Performance, bonus, rank int) {
	perf.BonusAwarded = bonus
	perf.Rank = rank

	memberIDs := make([]string, 0, len(perf.MemberPerformances))
	for i := range perf.MemberPerformances {
		member := &perf.MemberPerformances[i]
		member.BonusPoints = bonus
		memberIDs = append(memberIDs, member.UserID)

		if err := s.userRepo.ApplyTeamBonus(ctx, member.UserID, bonus); err != nil {
			s.logger.ErrorContext(ctx, "apply member bonus failed",
				"user_id", member.UserID,
				"match_id", matchID,
				"error", err,
			)
		}
	}

	if bonus > 0 {
		payload := map[string]any{
			"matchId": matchID,
			"teamId":  perf.TeamID,
			"bonus":   bonus,
		}
		if rank > 0 {
			payload["rank"] = rank
		} else {
			payload["fixtureWin"] = bonus == s.cfg.FixtureWinBonus
			payload["fixtureTie"] = bonus == s.cfg.FixtureWinBonus/2
		}
		s.notifier.NotifyUsers(ctx, memberIDs, notification.EventTeamBonusAwarded, payload)
	}

	perf.Status = performance.StatusCompleted
	perf.UpdatedAt = s.now().UTC()
	if err := s.perfRepo.Update(ctx, *perf); err != nil {
		s.logger.ErrorContext(ctx, "complete performance failed",
			"team_id", perf.TeamID,
			"match_id", matchID,
			"error", err,
		)
	}
}

// CompleteMatchScoring composes the whole pipeline for a finished match:
// auto-register eligible teams, recompute aggregates, resolve bonuses.
// A second invocation finds nothing pending or active and is a no-op.
func (s *TeamScoringService) CompleteMatchScoring(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoringService.CompleteMatchScoring")
	defer span.End()

	if err := s.AutoRegisterEligibleTeams(ctx, matchID); err != nil {
		return err
	}
	if err := s.RecomputeForMatch(ctx, matchID); err != nil {
		return err
	}

	return s.AwardBonuses(ctx, matchID)
}
