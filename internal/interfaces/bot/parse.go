package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

const optionCallbackPrefix = "opt:"

var eventDateLayouts = []string{"2006-01-02T15:04", "2006-01-02"}

type command struct {
	Name string
	Args []string
}

// parseCommand splits "/name@bot arg1 "quoted arg" ..." into a lowercase name
// and its arguments. ok is false for text that is not a command.
func parseCommand(text string) (command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return command{}, false
	}

	tokens := tokenize(text[1:])
	if len(tokens) == 0 || tokens[0] == "" {
		return command{}, false
	}
	name := tokens[0]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return command{}, false
	}

	return command{Name: strings.ToLower(name), Args: tokens[1:]}, true
}

// tokenize splits on whitespace; double quotes group words into one token.
func tokenize(s string) []string {
	var (
		out     []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			out = append(out, current.String())
		}
		current.Reset()
		started = false
	}

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	return out
}

func parseEventID(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, usageError(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(usage)
	}
	return id, nil
}

// parseCreateEvent reads <name> <description> <limit> [date] [location...].
func parseCreateEvent(args []string, loc *time.Location) (usecase.CreateEventInput, error) {
	if len(args) < 3 {
		return usecase.CreateEventInput{}, usageError(usageEventCreate)
	}
	limit, err := strconv.Atoi(args[2])
	if err != nil {
		return usecase.CreateEventInput{}, usageError(usageEventCreate)
	}

	input := usecase.CreateEventInput{
		Name:        args[0],
		Description: args[1],
		Capacity:    limit,
	}

	rest := args[3:]
	if len(rest) > 0 {
		if date, ok := parseEventDate(rest[0], loc); ok {
			input.Date = date
			rest = rest[1:]
		}
	}
	input.Location = strings.Join(rest, " ")

	return input, nil
}

func parseEventDate(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range eventDateLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseBalanceArgs(args []string) (int64, int, error) {
	eventID, err := parseEventID(args, usageBalanceTeams)
	if err != nil {
		return 0, 0, err
	}
	if len(args) < 2 {
		return eventID, 0, nil
	}
	teams, err := strconv.Atoi(args[1])
	if err != nil || teams < 1 {
		return 0, 0, usageError(usageBalanceTeams)
	}
	return eventID, teams, nil
}

func optionCallbackData(optionID int64) string {
	return optionCallbackPrefix + strconv.FormatInt(optionID, 10)
}

// parseOptionCallback accepts "opt:<id>" and the bare numeric form older keyboards used.
func parseOptionCallback(data string) (int64, bool) {
	raw := strings.TrimPrefix(strings.TrimSpace(data), optionCallbackPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type usageError string

func (e usageError) Error() string {
	return fmt.Sprintf("Usage: %s", string(e))
}
