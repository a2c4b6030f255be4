package reconcile

import "github.com/ionutdr23/GameMate/internal/domain"

// GameProfilePlan is the mutation plan for a viewer's game profiles.
type GameProfilePlan = Plan[domain.GameProfile, domain.GameProfileRequest]

func existingGameID(gp domain.GameProfile) string     { return gp.Game.ID }
func targetGameID(r domain.GameProfileRequest) string { return r.GameID }

// GameProfiles diffs the stored game profiles against the edited list, keyed
// by game id.
func GameProfiles(existing []domain.GameProfile, target []domain.GameProfileRequest) GameProfilePlan {
	return Diff(existing, target, existingGameID, targetGameID, GameProfileChanged)
}

// GameProfileKeys returns the game ids of each part of p.
func GameProfileKeys(p GameProfilePlan) (create, update, del []string) {
	return Keys(p, existingGameID, targetGameID)
}

// GameProfileChanged reports whether applying r to gp would modify it. Tag
// lists are compared element by element, so a reordering counts as a change.
func GameProfileChanged(gp domain.GameProfile, r domain.GameProfileRequest) bool {
	return gp.SkillLevel != r.SkillLevel ||
		!equalOrdered(gp.Playstyles, r.Playstyles) ||
		!equalOrdered(gp.Platforms, r.Platforms)
}

// nil and empty compare equal.
func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Rejection explains why an edited entry was dropped before diffing.
type Rejection struct {
	Request domain.GameProfileRequest
	Fields  map[string]string
}

// FilterValid keeps the entries that the backend would accept: a known game,
// a skill level from that game's set, and at least one known playstyle and
// platform. Kept entries are normalized the way the backend stores them, so
// diffing them against a refetched profile after a save yields an empty plan.
// When a game appears more than once the last entry wins and takes the
// position of the first.
func FilterValid(target []domain.GameProfileRequest, games []domain.Game) ([]domain.GameProfileRequest, []Rejection) {
	catalog := make(map[string]domain.Game, len(games))
	for _, g := range games {
		catalog[g.ID] = g
	}

	var (
		kept     []domain.GameProfileRequest
		rejected []Rejection
		position = make(map[string]int)
	)
	for _, r := range target {
		r = r.Normalized()
		g, ok := catalog[r.GameID]
		if fields := domain.GameProfileErrors(r, g, ok); fields != nil {
			rejected = append(rejected, Rejection{Request: r, Fields: fields})
			continue
		}
		if i, ok := position[r.GameID]; ok {
			kept[i] = r
			continue
		}
		position[r.GameID] = len(kept)
		kept = append(kept, r)
	}
	return kept, rejected
}

// Apply returns the collection, keyed by game id, that results from executing
// p against existing. It is the client-side model of a successful save.
func Apply(existing []domain.GameProfile, p GameProfilePlan) []domain.GameProfile {
	deleted := make(map[string]bool, len(p.Delete))
	for _, gp := range p.Delete {
		deleted[gp.Game.ID] = true
	}
	updates := make(map[string]domain.GameProfileRequest, len(p.Update))
	for _, r := range p.Update {
		updates[r.GameID] = r
	}

	var out []domain.GameProfile
	for _, gp := range existing {
		if deleted[gp.Game.ID] {
			continue
		}
		if r, ok := updates[gp.Game.ID]; ok {
			gp.SkillLevel = r.SkillLevel
			gp.Playstyles = append([]string(nil), r.Playstyles...)
			gp.Platforms = append([]string(nil), r.Platforms...)
		}
		out = append(out, gp)
	}
	for _, r := range p.Create {
		out = append(out, domain.GameProfile{
			Game:       domain.Game{ID: r.GameID},
			SkillLevel: r.SkillLevel,
			Playstyles: append([]string(nil), r.Playstyles...),
			Platforms:  append([]string(nil), r.Platforms...),
		})
	}
	return out
}
