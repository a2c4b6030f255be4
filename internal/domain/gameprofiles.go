package domain

import "strings"

// Normalized returns r the way the backend stores it: ids and skill level
// trimmed, tag lists trimmed with blanks and repeats dropped in first-seen
// order.
func (r GameProfileRequest) Normalized() GameProfileRequest {
	return GameProfileRequest{
		GameID:     strings.TrimSpace(r.GameID),
		SkillLevel: strings.TrimSpace(r.SkillLevel),
		Playstyles: DedupeTags(r.Playstyles),
		Platforms:  DedupeTags(r.Platforms),
	}
}

// DedupeTags never returns nil.
func DedupeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// GameProfileErrors checks a normalized r against game, which found reports
// as present in the catalog. It returns nil when r is acceptable.
func GameProfileErrors(r GameProfileRequest, game Game, found bool) map[string]string {
	fields := map[string]string{}
	switch {
	case r.GameID == "":
		fields["gameId"] = "required"
	case !found:
		fields["gameId"] = "unknown game"
	case r.SkillLevel == "":
		fields["skillLevel"] = "required"
	case !game.HasSkillLevel(r.SkillLevel):
		fields["skillLevel"] = "not a skill level of " + game.Name
	}
	if msg := tagError(r.Playstyles, IsPlaystyle, "playstyle"); msg != "" {
		fields["playstyles"] = msg
	}
	if msg := tagError(r.Platforms, IsPlatform, "platform"); msg != "" {
		fields["platforms"] = msg
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func tagError(tags []string, known func(string) bool, noun string) string {
	if len(tags) == 0 {
		return "at least one required"
	}
	for _, t := range tags {
		if !known(t) {
			return "unknown " + noun + " " + t
		}
	}
	return ""
}
