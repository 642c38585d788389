package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/multilink/internal/shared"
	"github.com/desertthunder/multilink/internal/tasks"
	"github.com/desertthunder/multilink/internal/ui"
	"github.com/urfave/cli/v3"
)

// Resolve runs the pipeline once on the given text.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	text := strings.TrimSpace(strings.Join(append([]string{cmd.StringArg("text")}, cmd.Args().Slice()...), " "))
	if text == "" {
		return fmt.Errorf("%w: text containing a track link", shared.ErrMissingArgument)
	}

	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	if cmd.Bool("markdown") {
		reply := engine.Handle(ctx, text)
		return r.writePlain("%s\n", reply.Text)
	}

	asJSON := cmd.Bool("json")
	var progressCh chan tasks.ProgressUpdate
	done := make(chan struct{})
	if asJSON {
		close(done)
	} else {
		progressCh = make(chan tasks.ProgressUpdate, 16)
		go func() {
			defer close(done)
			for update := range progressCh {
				r.writeProgress(update)
			}
		}()
	}

	res, err := engine.Resolve(ctx, text, progressCh)
	if progressCh != nil {
		close(progressCh)
	}
	<-done

	switch {
	case errors.Is(err, shared.ErrUnrecognizedLink):
		return fmt.Errorf("%w: %s", err, tasks.InvalidMessage)
	case err != nil:
		return err
	}

	if asJSON {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}
	return r.writeResolution(res)
}

func (r *Runner) writeProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.Recognize:
		r.writePlain("🔗 %s\n", update.Message)
	case tasks.Extract:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.Search:
		if update.Step == 0 {
			r.writePlain("\n🔍 %s\n", update.Message)
		} else {
			r.writePlain("   %s\n", update.Message)
		}
	}
}

func (r *Runner) writeResolution(res *tasks.Resolution) error {
	names := map[string]string{}
	if r.registry != nil {
		for _, d := range r.registry.Descriptors() {
			names[string(d.ID)] = d.DisplayName
		}
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	found := 0
	var b strings.Builder
	b.WriteString("\n" + ui.Title(fmt.Sprintf("%s - %s", res.Track.Performer, res.Track.Title)) + "\n")
	b.WriteString(ui.Row(name(string(res.Track.Origin)), res.Track.SourceURL) + "\n")
	for _, result := range res.Results {
		value := result.URL
		if result.Found() {
			found++
		} else {
			value = ui.Help(result.Err)
		}
		b.WriteString(ui.Mark(result.Found(), result.Fallback) + " " + ui.Row(name(string(result.Service)), value) + "\n")
	}
	b.WriteString("\n" + ui.Help(fmt.Sprintf("found %d/%d in %s (request %s)", found, len(res.Results),
		res.Duration.Round(time.Millisecond), res.RequestID)) + "\n")

	return r.writePlain("%s", b.String())
}
