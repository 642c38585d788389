package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/services"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/desertthunder/multilink/internal/tasks"
	tu "github.com/desertthunder/multilink/internal/testing"
)

func mockRegistry() *services.Registry {
	d := services.Descriptors()
	sp, ya, mts := tu.NewMockService(d[0]), tu.NewMockService(d[1]), tu.NewMockService(d[2])

	sp.ExtractFn = func(_ context.Context, rawURL string) (models.TrackReference, error) {
		return models.TrackReference{SourceURL: rawURL, Title: "Song", Performer: "Artist"}, nil
	}
	ya.SearchFn = func(context.Context, string, string) models.CrossServiceResult {
		return models.CrossServiceResult{URL: "https://music.yandex.ru/album/1/track/2"}
	}
	mts.SearchFn = func(context.Context, string, string) models.CrossServiceResult {
		return models.CrossServiceResult{URL: "https://music.mts.ru/search?text=Artist+Song", Fallback: true}
	}
	return services.NewRegistry(sp, ya, mts)
}

func newTestRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{
		Config:   shared.DefaultConfig(),
		Logger:   shared.NewLogger(io.Discard),
		Output:   output,
		Registry: mockRegistry(),
	})
}

func run(r *Runner, args ...string) error {
	return newApp(r).Run(context.Background(), append([]string{"multilink"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			registry := mockRegistry()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Registry:   registry,
			})

			if runner.config != config || !runner.preset {
				t.Error("expected preset config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.registry != registry {
				t.Error("expected registry to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nothing provided uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil || runner.preset {
				t.Error("expected default, non-preset config")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient == nil || runner.httpClient.Timeout == 0 {
				t.Error("expected a bounded default http client")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		names := map[string]bool{}
		for i, cmd := range runner.register() {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"bot", "webhook", "resolve", "services", "setup"} {
			if !names[want] {
				t.Errorf("expected %s command", want)
			}
		}
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("invalid log level", func(t *testing.T) {
			err := run(newTestRunner(&bytes.Buffer{}), "--log-level", "loud", "services")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("reads the config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[telegram]\nmarkdown = \"v2\"\n"), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
			if err := run(runner, "--config", path, "services"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config.Telegram.Markdown != "v2" {
				t.Errorf("expected markdown v2 from file, got %q", runner.config.Telegram.Markdown)
			}
			if runner.config.Server.Port != 8080 {
				t.Errorf("expected defaults to fill missing keys, got port %d", runner.config.Server.Port)
			}
		})
	})
}

func TestResolveCommand(t *testing.T) {
	const link = "https://open.spotify.com/track/abc123"

	t.Run("json", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := run(newTestRunner(output), "resolve", "--json", link); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var res tasks.Resolution
		if err := json.Unmarshal(output.Bytes(), &res); err != nil {
			t.Fatalf("expected JSON output, got %v: %s", err, output.String())
		}
		if res.Track.Origin != models.Spotify || res.Track.Title != "Song" {
			t.Errorf("unexpected track %+v", res.Track)
		}
		if len(res.Results) != 2 || res.Results[0].Service != models.YandexMusic {
			t.Errorf("unexpected results %+v", res.Results)
		}
	})

	t.Run("plain", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := run(newTestRunner(output), "resolve", "listen:", link); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		for _, want := range []string{"Recognized", "Artist - Song", "music.yandex.ru/album/1/track/2", "found 2/2"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in output:\n%s", want, got)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := run(newTestRunner(output), "resolve", "--markdown", link); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(output.String(), "*Artist* - *Song*") {
			t.Errorf("expected bot reply text, got %q", output.String())
		}
	})

	t.Run("unrecognized link", func(t *testing.T) {
		err := run(newTestRunner(&bytes.Buffer{}), "resolve", "https://example.com/x")
		if !errors.Is(err, shared.ErrUnrecognizedLink) {
			t.Errorf("expected ErrUnrecognizedLink, got %v", err)
		}
	})

	t.Run("missing text", func(t *testing.T) {
		err := run(newTestRunner(&bytes.Buffer{}), "resolve")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestServicesCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := run(newTestRunner(output), "services", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var infos []serviceInfo
		if err := json.Unmarshal(output.Bytes(), &infos); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if len(infos) != 3 {
			t.Fatalf("expected 3 services, got %d", len(infos))
		}
		if infos[0].ID != models.Spotify || !strings.Contains(infos[0].Pattern, "spotify") {
			t.Errorf("unexpected first service %+v", infos[0])
		}
	})

	t.Run("default registry reports credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Yandex.Token = "token"
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(runner, "services", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var infos []serviceInfo
		if err := json.Unmarshal(output.Bytes(), &infos); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		for _, info := range infos {
			if want := info.ID == models.YandexMusic; info.Authenticated != want {
				t.Errorf("%s: expected authenticated=%v", info.ID, want)
			}
		}
	})

	t.Run("plain", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := run(newTestRunner(output), "services"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Yandex Music") {
			t.Errorf("expected service table, got %s", output.String())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	output := &bytes.Buffer{}

	if err := run(newTestRunner(output), "setup", "--output", path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tu.AssertFileExists(t, path)
	if !strings.Contains(tu.MustReadFile(t, path), "[telegram]") {
		t.Error("expected template content")
	}

	if err := run(newTestRunner(output), "setup", "--output", path); err == nil {
		t.Error("expected error when the file already exists")
	}
}

func TestBotCommandRequiresToken(t *testing.T) {
	for _, name := range []string{"bot", "webhook"} {
		t.Run(name, func(t *testing.T) {
			err := run(newTestRunner(&bytes.Buffer{}), name)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}
