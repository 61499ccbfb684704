package progress

// Level is one rung of the level ladder.
type Level struct {
	Threshold int
	Title     string
}

// Levels is the ladder, ascending by threshold.
var Levels = []Level{
	{0, "Novice"},
	{10, "Apprentice"},
	{50, "Practitioner"},
	{100, "Elite"},
	{300, "Expert"},
	{500, "Master"},
	{1000, "Grandmaster"},
	{3000, "Legend"},
	{5000, "Champion"},
	{10000, "Supreme"},
}

// LevelInfo describes where a total count sits on the ladder.
type LevelInfo struct {
	Level          int    `json:"level"`
	Title          string `json:"title"`
	Total          int    `json:"total"`
	Threshold      int    `json:"threshold"`
	NextThreshold  int    `json:"next_threshold"`
	ProgressToNext int    `json:"progress_to_next"`
	Remaining      int    `json:"remaining"`
	MaxLevel       bool   `json:"max_level"`
}

// ComputeLevel maps a total count onto Levels. A total equal to a
// threshold belongs to that threshold's level.
func ComputeLevel(total int) LevelInfo {
	idx := 0
	for i, l := range Levels {
		if total < l.Threshold {
			break
		}
		idx = i
	}

	info := LevelInfo{
		Level:     idx,
		Title:     Levels[idx].Title,
		Total:     total,
		Threshold: Levels[idx].Threshold,
	}

	if idx == len(Levels)-1 {
		info.MaxLevel = true
		info.NextThreshold = Levels[idx].Threshold
		info.ProgressToNext = 100
	} else {
		info.NextThreshold = Levels[idx+1].Threshold
		span := info.NextThreshold - info.Threshold
		info.ProgressToNext = (total - info.Threshold) * 100 / span
	}

	info.Remaining = max(0, info.NextThreshold-total)
	return info
}
