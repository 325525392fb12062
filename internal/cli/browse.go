package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
)

const browseHelp = `commands:
  <path>           navigate, relative to the current route
  replace <path>   navigate without a new history entry
  back | forward   move through history
  go <n>           move n entries
  href <to>        print the href of to
  active <path>    report whether path is active
  where            print the current state
  exit             quit`

// BrowseOptions configures Browse.
type BrowseOptions struct {
	// Start is the first history entry. Defaults to the basename root.
	Start  string
	Logger *slog.Logger

	// Options are added to the Router, e.g. its artifact source.
	Options []wayfinder.Option
}

// browser serializes what the Router reports between two commands.
type browser struct {
	mu      sync.Mutex
	updates int
	err     error
}

func (b *browser) onUpdate(*domain.RouterState) {
	b.mu.Lock()
	b.updates++
	b.mu.Unlock()
}

func (b *browser) onError(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

func (b *browser) take() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.updates, b.err
	b.updates, b.err = 0, nil
	return n, err
}

// Browse drives a Router over an in-memory history from line commands read
// from in, printing each settled state to out. It returns when in is
// exhausted, on exit, or when ctx ends.
func Browse(ctx context.Context, eng *wayfinder.Engine, in io.Reader, out io.Writer, opts BrowseOptions) error {
	start := opts.Start
	if start == "" {
		start = wayfinder.Href("/", nil, nil, eng.Basename())
	}
	b := &browser{}
	history := memory.NewHistory(start)

	routerOpts := []wayfinder.Option{
		wayfinder.WithBasename(eng.Basename()),
		wayfinder.OnUpdate(b.onUpdate),
		wayfinder.OnError(b.onError),
	}
	if opts.Logger != nil {
		routerOpts = append(routerOpts, wayfinder.WithLogger(opts.Logger))
	}
	routerOpts = append(routerOpts, opts.Options...)
	router, err := wayfinder.New(history, eng.Routes(), routerOpts...)
	if err != nil {
		return err
	}
	if err := router.Listen(ctx); err != nil {
		return err
	}
	defer router.Close()

	router.Wait()
	report(out, router, b)

	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "":
			continue
		case "exit", "quit", "q":
			printSystemMessage(out, "Bye!")
			return nil
		case "help", "?":
			fmt.Fprintln(out, browseHelp)
			continue
		case "where":
			printState(out, router.State())
			continue
		case "href":
			loc := domain.ParseLocation(arg)
			fmt.Fprintln(out, router.MakeHref(loc.Pathname, loc.Query))
			continue
		case "active":
			loc := domain.ParseLocation(arg)
			fmt.Fprintln(out, router.IsActive(loc.Pathname, loc.Query))
			continue
		case "back":
			router.GoBack()
		case "forward":
			router.GoForward()
		case "go":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(out, "go: %v\n", err)
				continue
			}
			router.Go(n)
		case "replace":
			loc := domain.ParseLocation(arg)
			router.ReplaceWith(loc.Pathname, loc.Query, nil)
		default:
			loc := domain.ParseLocation(line)
			router.TransitionTo(loc.Pathname, loc.Query, nil)
		}

		router.Wait()
		report(out, router, b)
	}
}

func report(out io.Writer, router *wayfinder.Router, b *browser) {
	updates, err := b.take()
	switch {
	case err != nil:
		fmt.Fprintf(out, "error: %v\n", err)
	case updates == 0:
		state := router.State()
		if state == nil {
			fmt.Fprintln(out, "no route matched")
			return
		}
		fmt.Fprintf(out, "unchanged, still at %s\n", state.Location.Path())
	default:
		printState(out, router.State())
	}
}

func printState(out io.Writer, state *domain.RouterState) {
	if state == nil {
		fmt.Fprintln(out, "no state yet")
		return
	}
	fmt.Fprintf(out, "%s  %s%s\n", state.Location.Path(), strings.Join(state.Branch.IDs(), " > "), formatParams(state.Params))
}

func formatParams(params domain.Params) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	return "  {" + strings.Join(pairs, ", ") + "}"
}
