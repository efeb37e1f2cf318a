package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/config"
	"github.com/valarxu/mahjong-practice/progress"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

var (
	errNoData            = errors.New("no data in line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("exiting")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// ShellController holds the practice table: the player's hand, the river
// of discards and the exposed tiles, plus the analyzer that judges them.
type ShellController struct {
	l          *readline.Instance
	out        io.Writer
	config     *config.Config
	gitVersion string

	an *analyzer.Analyzer
	// older tile-by-tile scorer, shown next to the real score by `score -raw`.
	rawScorer progress.Scorer

	hand    tilemapping.Hand
	river   []tilemapping.TileKind
	exposed []tilemapping.TileKind
	// ranking of the current hand's discards, from the last `best`.
	lastRanking []analyzer.DiscardOption
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController returns a controller reading from the terminal.
func NewShellController(cfg *config.Config, gitVersion string) (*ShellController, error) {
	sc, err := newController(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	sc.gitVersion = gitVersion

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mmahjong>\033[0m ",
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc, nil
}

// newController builds a controller without a terminal; output goes to out.
func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return &ShellController{out: out, config: cfg, an: an, rawScorer: progress.TileScorer{}}, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && len(fields[idx]) > 1 {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			opt := fields[idx][1:]
			options[opt] = append(options[opt], fields[idx+1])
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "hand":
		return sc.setHand(cmd)
	case "river":
		return sc.setRiver(cmd)
	case "exposed":
		return sc.setExposed(cmd)
	case "draw":
		return sc.draw(cmd)
	case "discard":
		return sc.discard(ctx, cmd)
	case "kong":
		return sc.kong(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "decompose":
		return sc.decompose(cmd)
	case "score":
		return sc.score(cmd)
	case "classify":
		return sc.classify(cmd)
	case "draws":
		return sc.draws(ctx, cmd)
	case "best":
		return sc.best(ctx, cmd)
	case "drill":
		return sc.drill(ctx, cmd)
	case "script":
		return sc.script(ctx, cmd)
	case "set":
		return sc.set(cmd)
	case "cache":
		return sc.cacheStats(cmd)
	default:
		log.Debug().Msgf("you said: %q", line)
		return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
	}
}

// Execute runs one line (from the command line, not the terminal).
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(context.Background(), line)
	if errors.Is(err, errQuit) {
		sig <- syscall.SIGINT
		return
	}
	sc.report(resp, err)
}

func (sc *ShellController) report(resp *Response, err error) {
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(context.Background(), line)
		if errors.Is(err, errQuit) {
			sig <- syscall.SIGINT
			break
		}
		sc.report(resp, err)
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup flushes anything the controller holds open.
func (sc *ShellController) Cleanup() {
	if st, ok := sc.an.CacheStats(); ok {
		log.Debug().Interface("cache-stats", st).Msg("shell-cleanup")
	}
}
