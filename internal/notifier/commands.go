package notifier

import (
	"fmt"
	"strings"

	"FundCalc/internal/model"
)

// CommandKind is a recognised bot command.
type CommandKind string

const (
	CommandCalc    CommandKind = "calc"
	CommandTrack   CommandKind = "track"
	CommandUntrack CommandKind = "untrack"
	CommandList    CommandKind = "list"
	CommandHelp    CommandKind = "help"
	CommandUnknown CommandKind = "unknown"
)

var commandNames = map[string]CommandKind{
	"/calc":    CommandCalc,
	"计算":       CommandCalc,
	"/track":   CommandTrack,
	"/untrack": CommandUntrack,
	"/list":    CommandList,
	"持仓":       CommandList,
	"/help":    CommandHelp,
	"/start":   CommandHelp,
	"帮助":       CommandHelp,
}

// Command is a parsed chat message.
type Command struct {
	Kind CommandKind
	Name string // the command word as typed, without @bot
	Args []string
}

// ParseCommand splits a chat message into a command and positional arguments.
func ParseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{Kind: CommandUnknown}
	}
	name := fields[0]
	if i := strings.IndexByte(name, '@'); i > 0 && strings.HasPrefix(name, "/") {
		name = name[:i]
	}
	kind, ok := commandNames[strings.ToLower(name)]
	if !ok {
		kind = CommandUnknown
	}
	return Command{Kind: kind, Name: name, Args: fields[1:]}
}

// CalcInput maps /calc arguments onto an input:
// amount premium [settleDays] [currentDay] [sellDelayDays] [limitPct].
// Omitted arguments and "-" take the value from defaults.
func (c Command) CalcInput(defaults model.CalcInput) (model.CalcInput, error) {
	return positional(c.Args, defaults, []model.Field{
		model.FieldAmount, model.FieldPremiumPct, model.FieldSettleDays,
		model.FieldCurrentDay, model.FieldSellDelayDays, model.FieldLimitPct,
	})
}

// TrackInput maps /track arguments onto a name and input:
// name amount premium [settleDays] [sellDelayDays] [limitPct].
func (c Command) TrackInput(defaults model.CalcInput) (string, model.CalcInput, error) {
	if len(c.Args) == 0 {
		return "", model.CalcInput{}, fmt.Errorf("missing name")
	}
	in, err := positional(c.Args[1:], defaults, []model.Field{
		model.FieldAmount, model.FieldPremiumPct, model.FieldSettleDays,
		model.FieldSellDelayDays, model.FieldLimitPct,
	})
	return c.Args[0], in, err
}

func positional(args []string, defaults model.CalcInput, order []model.Field) (model.CalcInput, error) {
	if len(args) < 2 {
		return model.CalcInput{}, fmt.Errorf("need at least amount and premium")
	}
	if len(args) > len(order) {
		return model.CalcInput{}, fmt.Errorf("too many arguments: got %d, want at most %d", len(args), len(order))
	}
	in := defaults
	for i, f := range order {
		if i >= len(args) || args[i] == "-" {
			continue
		}
		set(&in, f, args[i])
	}
	return in, nil
}

func set(in *model.CalcInput, f model.Field, v string) {
	raw := model.RawValue(v)
	switch f {
	case model.FieldAmount:
		in.Amount = raw
	case model.FieldPremiumPct:
		in.PremiumPct = raw
	case model.FieldSettleDays:
		in.SettleDays = raw
	case model.FieldCurrentDay:
		in.CurrentDay = raw
	case model.FieldSellDelayDays:
		in.SellDelayDays = raw
	case model.FieldLimitPct:
		in.LimitPct = raw
	}
}
