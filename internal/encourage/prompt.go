package encourage

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/store"
)

// Snapshot is the study state a prompt describes.
type Snapshot struct {
	Today  progress.TodayProgress
	Streak int
	Total  int
	Level  progress.LevelInfo
}

// BuildPrompt returns the system and user prompts for one request.
func BuildPrompt(p store.Persona, scene Scene, snap Snapshot, values map[string]any) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Your speaking style: %s\n\n", p.ToneStyle)
	b.WriteString("The student's current progress:\n")
	fmt.Fprintf(&b, "- Today: %d questions / goal: %d\n", snap.Today.Current, snap.Today.Target)
	fmt.Fprintf(&b, "- Streak: %d days\n", snap.Streak)
	fmt.Fprintf(&b, "- Total: %d questions\n", snap.Total)
	fmt.Fprintf(&b, "- Level %d %s\n\n", snap.Level.Level, snap.Level.Title)

	fmt.Fprintf(&b, "Scene: %s\n", scene.DisplayName())
	if values != nil {
		b.WriteString(scene.Render(values))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Speaking as %s, in a %s tone, write the student 50-80 words of encouragement or advice.\n\n", p.Name, p.ToneStyle)
	b.WriteString(`Output rules:
1. Output only the final message, with no reasoning, analysis or steps.
2. No prefixes such as "As a ...", "I think" or "Reply:".
3. Speak directly to the student in the first person.
4. Sound natural and fit the persona.
5. Be specific and use the student's actual numbers.
6. Use 1-2 emoji.`)

	return p.SystemPrompt, b.String()
}

var replyPrefixes = []string{"Reply:", "Response:", "Answer:"}

// cleanReply trims whitespace, wrapping quotes and reply prefixes from a
// model answer.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range replyPrefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			s = strings.TrimSpace(rest)
		}
	}
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}
