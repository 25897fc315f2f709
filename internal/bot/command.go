package bot

import (
	"strings"
	"unicode/utf8"
)

const DefaultMaxMessageLength = 4096

// Command is one chat message from a user identified by the transport.
type Command struct {
	UserID string
	Text   string
}

type Reply struct {
	Text string
}

// ParseCommand splits "/name@bot arg1 arg2" into its lowercase name and arguments.
// ok is false when text is not a command.
func ParseCommand(text string) (name string, args []string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name = strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}

// Chunks splits the reply into messages of at most limit runes, preferring line breaks.
// Lines longer than limit are cut at rune boundaries.
func (r Reply) Chunks(limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxMessageLength
	}
	if utf8.RuneCountInString(r.Text) <= limit {
		return []string{r.Text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.Split(r.Text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			head, tail := splitRunes(line, limit)
			chunks = append(chunks, head)
			line = tail
		}
		n := utf8.RuneCountInString(line)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		curLen += sep + n
	}
	flush()
	return chunks
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
