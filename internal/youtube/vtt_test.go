package youtube

import "testing"

func TestCleanTranscript(t *testing.T) {
	raw := `WEBVTT

00:00:00.000 --> 00:00:02.500 align:start position:0%
the market opened higher today
00:00:02.500 --> 00:00:05.000 align:start position:0%
the market opened higher today
00:00:05.000 --> 00:00:07.500 align:start position:0%
tech stocks led the rally
`
	got := CleanTranscript(raw)
	want := "the market opened higher today tech stocks led the rally"
	if got != want {
		t.Fatalf("CleanTranscript() = %q, want %q", got, want)
	}
}

func TestCleanTranscriptDropsPlainTimingLines(t *testing.T) {
	raw := `WEBVTT

00:00:00.000 --> 00:00:02.500
earnings season is here
`
	got := CleanTranscript(raw)
	if got != "earnings season is here" {
		t.Fatalf("CleanTranscript() = %q, want %q", got, "earnings season is here")
	}
}

func TestCleanTranscriptEmpty(t *testing.T) {
	if got := CleanTranscript(""); got != "" {
		t.Fatalf("CleanTranscript(empty) = %q, want empty", got)
	}
	if got := CleanTranscript("WEBVTT\n\n"); got != "" {
		t.Fatalf("CleanTranscript(header only) = %q, want empty", got)
	}
}

func TestCleanTranscriptPreservesOrder(t *testing.T) {
	raw := "first line\nsecond line\nfirst line\nthird line"
	got := CleanTranscript(raw)
	want := "first line second line third line"
	if got != want {
		t.Fatalf("CleanTranscript() = %q, want %q", got, want)
	}
}
