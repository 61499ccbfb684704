package encourage

import (
	"fmt"
	"strings"
)

// Scene is the event an encouragement responds to.
type Scene string

const (
	SceneDailyGoal   Scene = "daily_goal_complete"
	SceneAchievement Scene = "achievement_unlock"
	SceneStreak      Scene = "streak_milestone"
	SceneBigProgress Scene = "big_progress"
	SceneComeback    Scene = "comeback"
	SceneManual      Scene = "manual_request"
)

// AllScenes returns every scene in trigger priority order.
func AllScenes() []Scene {
	return []Scene{SceneAchievement, SceneStreak, SceneDailyGoal, SceneBigProgress, SceneComeback, SceneManual}
}

// Valid reports whether s is a known scene.
func (s Scene) Valid() bool {
	_, ok := sceneTemplates[s]
	return ok
}

// DisplayName returns a human-readable label for the scene.
func (s Scene) DisplayName() string {
	switch s {
	case SceneDailyGoal:
		return "Daily goal complete"
	case SceneAchievement:
		return "Achievement unlocked"
	case SceneStreak:
		return "Streak milestone"
	case SceneBigProgress:
		return "Big submission"
	case SceneComeback:
		return "Welcome back"
	case SceneManual:
		return "Asked for encouragement"
	default:
		return string(s)
	}
}

var sceneTemplates = map[Scene]string{
	SceneDailyGoal:   "The student finished {current} questions today, reaching the daily goal of {target}. Encourage them.",
	SceneAchievement: "The student just unlocked the achievement \"{achievement_name}\": {achievement_desc}. Congratulate them.",
	SceneStreak:      "The student has studied {streak_days} days in a row! Acknowledge and encourage them.",
	SceneBigProgress: "The student just finished {count} questions in one go! Show surprise and appreciation.",
	SceneComeback:    "The student had not studied for {days} days and is starting again today. Welcome them back warmly.",
	SceneManual:      "The student is asking for encouragement. Progress so far: {total} questions in total, {current} today. Support them.",
}

// Render fills the scene template with values. Placeholders without a
// value are left as is.
func (s Scene) Render(values map[string]any) string {
	tmpl := sceneTemplates[s]
	if len(values) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
