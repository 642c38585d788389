package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/services"
	"github.com/desertthunder/multilink/internal/shared"
	tgmodels "github.com/go-telegram/bot/models"
)

func TestEscape(t *testing.T) {
	tc := []struct {
		name    string
		text    string
		dialect Dialect
		want    string
	}{
		{name: "v1 plain", text: "Artist", dialect: MarkdownV1, want: "Artist"},
		{name: "v1 specials", text: "a_b*c`d[e]", dialect: MarkdownV1, want: "a\\_b\\*c\\`d\\[e]"},
		{name: "v1 keeps v2-only punctuation", text: "A.B-C!", dialect: MarkdownV1, want: "A.B-C!"},
		{name: "v2 punctuation", text: "A.B-C!", dialect: MarkdownV2, want: `A\.B\-C\!`},
		{name: "v2 brackets", text: "Song (feat. X) [Live]", dialect: MarkdownV2, want: `Song \(feat\. X\) \[Live\]`},
		{name: "v2 backslash", text: `a\b`, dialect: MarkdownV2, want: `a\\b`},
		{name: "v1 backslash is literal", text: `AC\DC`, dialect: MarkdownV1, want: `AC\DC`},
		{name: "empty", text: "", dialect: MarkdownV1, want: "N/A"},
		{name: "blank v2", text: "   ", dialect: MarkdownV2, want: "N/A"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.text, tt.dialect); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBold(t *testing.T) {
	tc := []struct {
		name    string
		text    string
		dialect Dialect
		want    string
	}{
		{name: "v1 plain", text: "CeeLo Green", dialect: MarkdownV1, want: "*CeeLo Green*"},
		{name: "v1 asterisks close the entity", text: "F**k You", dialect: MarkdownV1, want: `*F*\*\**k You*`},
		{name: "v1 underscore", text: "lil_peep", dialect: MarkdownV1, want: `*lil*\_*peep*`},
		{name: "v1 leading and trailing specials", text: "[Live]_", dialect: MarkdownV1, want: `\[*Live]*\_`},
		{name: "v1 backslash stays inside", text: `AC\DC`, dialect: MarkdownV1, want: `*AC\DC*`},
		{name: "v1 backtick", text: "a`b", dialect: MarkdownV1, want: "*a*\\`*b*"},
		{name: "v2 asterisks", text: "F**k You", dialect: MarkdownV2, want: `*F\*\*k You*`},
		{name: "v2 underscore", text: "lil_peep", dialect: MarkdownV2, want: `*lil\_peep*`},
		{name: "v2 backslash", text: `AC\DC`, dialect: MarkdownV2, want: `*AC\\DC*`},
		{name: "blank", text: " ", dialect: MarkdownV1, want: "*N/A*"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bold(tt.text, tt.dialect); got != tt.want {
				t.Errorf("Bold(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// entitiesBalanced walks legacy Markdown the way Telegram does: a backslash escapes one of _ * ` [ outside an
// entity, and inside an entity everything up to the closing marker is literal.
func entitiesBalanced(text string) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) && strings.IndexByte(v1Specials, text[i+1]) >= 0 {
			i++
			continue
		}
		if c != '*' && c != '_' && c != '`' {
			continue
		}
		end := strings.IndexByte(text[i+1:], c)
		if end < 0 {
			return false
		}
		i += end + 1
	}
	return true
}

func TestParseDialect(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		for in, want := range map[string]Dialect{"": MarkdownV1, "v1": MarkdownV1, "V2": MarkdownV2} {
			got, err := ParseDialect(in)
			if err != nil || got != want {
				t.Errorf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseDialect("html"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("parse modes", func(t *testing.T) {
		if MarkdownV1.ParseMode() != tgmodels.ParseModeMarkdownV1 {
			t.Errorf("unexpected v1 parse mode %q", MarkdownV1.ParseMode())
		}
		if MarkdownV2.ParseMode() != tgmodels.ParseModeMarkdown {
			t.Errorf("unexpected v2 parse mode %q", MarkdownV2.ParseMode())
		}
	})
}

func TestFormat(t *testing.T) {
	ref := models.TrackReference{
		Origin:    models.Spotify,
		SourceURL: "https://open.spotify.com/track/abc123",
		Title:     "Song",
		Performer: "Artist",
	}

	t.Run("header and link order", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV1)
		results := []models.CrossServiceResult{
			{Service: models.MTSMusic, URL: "https://music.mts.ru/track/1"},
			{Service: models.YandexMusic, URL: "https://music.yandex.ru/album/2/track/3"},
		}

		got := f.Format(ref, results)
		want := strings.Join([]string{
			"*Artist* - *Song*",
			"",
			"[🟢 Spotify](https://open.spotify.com/track/abc123)",
			"[🟠 Yandex Music](https://music.yandex.ru/album/2/track/3)",
			"[🟣 MTS Music](https://music.mts.ru/track/1)",
		}, "\n")
		if got != want {
			t.Errorf("Format() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("empty results are skipped", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV1)
		results := []models.CrossServiceResult{
			{Service: models.YandexMusic, Err: "timeout"},
			{Service: models.MTSMusic, URL: "https://music.mts.ru/track/1"},
		}

		got := f.Format(ref, results)
		if strings.Contains(got, "Yandex") {
			t.Errorf("expected no yandex line, got\n%s", got)
		}
		if !strings.Contains(got, "MTS Music") {
			t.Errorf("expected mts line, got\n%s", got)
		}
	})

	t.Run("origin result is never listed twice", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV1)
		got := f.Format(ref, []models.CrossServiceResult{{Service: models.Spotify, URL: "https://open.spotify.com/track/other"}})
		if strings.Count(got, "Spotify") != 1 {
			t.Errorf("expected a single spotify line, got\n%s", got)
		}
	})

	t.Run("fallback label", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV1)
		got := f.Format(ref, []models.CrossServiceResult{
			{Service: models.YandexMusic, URL: "https://music.yandex.ru/search?text=Artist+Song", Fallback: true},
		})
		if !strings.Contains(got, "[🟠 Yandex Music (search)](https://music.yandex.ru/search?text=Artist+Song)") {
			t.Errorf("expected labelled fallback link, got\n%s", got)
		}
	})

	t.Run("v2 escaping", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV2)
		r := ref
		r.Performer = "AC/DC"
		r.Title = "T.N.T."
		r.SourceURL = "https://open.spotify.com/track/a)b"

		got := f.Format(r, nil)
		lines := strings.Split(got, "\n")
		if lines[0] != `*AC/DC* \- *T\.N\.T\.*` {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[2] != `[🟢 Spotify](https://open.spotify.com/track/a\)b)` {
			t.Errorf("unexpected origin line %q", lines[2])
		}
	})

	t.Run("v1 header survives special characters", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV1)
		for _, tt := range []struct{ performer, title, want string }{
			{"CeeLo Green", "F**k You", `*CeeLo Green* - *F*\*\**k You*`},
			{"lil_peep", "Song", `*lil*\_*peep* - *Song*`},
			{`AC\DC`, "T.N.T.", `*AC\DC* - *T.N.T.*`},
		} {
			r := ref
			r.Performer, r.Title = tt.performer, tt.title
			got := f.Format(r, nil)
			header := strings.Split(got, "\n")[0]
			if header != tt.want {
				t.Errorf("header for %q/%q = %q, want %q", tt.performer, tt.title, header, tt.want)
			}
			if !entitiesBalanced(got) {
				t.Errorf("unbalanced entities in %q", got)
			}
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		f := New(services.Descriptors(), MarkdownV1)
		got := f.Format(models.TrackReference{Origin: models.MTSMusic, SourceURL: "https://music.mts.ru/track/1"}, nil)
		if !strings.HasPrefix(got, "*N/A* - *N/A*") {
			t.Errorf("expected N/A header, got %q", got)
		}
	})
}

func TestPlain(t *testing.T) {
	f := New(services.Descriptors(), MarkdownV1)
	ref := models.TrackReference{Origin: models.YandexMusic, SourceURL: "https://music.yandex.ru/track/1", Title: "Song", Performer: "Artist"}
	results := []models.CrossServiceResult{
		{Service: models.Spotify, URL: "https://open.spotify.com/track/x"},
		{Service: models.MTSMusic, URL: "https://music.mts.ru/search?text=Artist+Song", Fallback: true},
	}

	got := f.Plain(ref, results)
	for _, want := range []string{
		"Artist - Song\n",
		"🟠 Yandex Music: https://music.yandex.ru/track/1\n",
		"🟢 Spotify: https://open.spotify.com/track/x\n",
		"🟣 MTS Music (search): https://music.mts.ru/search?text=Artist+Song\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in\n%s", want, got)
		}
	}
}
