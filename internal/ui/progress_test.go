package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fenilsonani/codeclean/internal/progress"
)

func TestLiveProgressRendersStages(t *testing.T) {
	var out bytes.Buffer
	lp := NewLiveProgress(&out)
	assert.Equal(t, 80, lp.width)

	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindStart, Total: 4})
	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindProgress, Done: 1, Total: 4, Path: "app/src/test/FooTest.kt"})
	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindFinish, Done: 4, Total: 4})
	lp.Finish()

	s := out.String()
	assert.Contains(t, s, "files")
	assert.Contains(t, s, "0/4")
	assert.Contains(t, s, "1/4")
	assert.Contains(t, s, "FooTest.kt")
	assert.Contains(t, s, "4/4")
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestLiveProgressThrottlesProgress(t *testing.T) {
	var out bytes.Buffer
	lp := NewLiveProgress(&out)
	lp.interval = time.Hour

	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindProgress, Done: 1, Total: 3, Path: "a.log"})
	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindProgress, Done: 2, Total: 3, Path: "b.log"})

	s := out.String()
	assert.Contains(t, s, "a.log")
	assert.NotContains(t, s, "b.log")
}

func TestLiveProgressPrintsErrorsOnOwnLine(t *testing.T) {
	var out bytes.Buffer
	lp := NewLiveProgress(&out)

	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindStart, Total: 1})
	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindError, Path: "x.log", Message: "Permission denied"})
	lp.Emit(progress.Event{Stage: progress.StageFiles, Kind: progress.KindWarning, Message: "ignored"})

	s := out.String()
	assert.Contains(t, s, "Permission denied (x.log)")
	assert.NotContains(t, s, "ignored")
}

func TestLiveProgressFinishWithoutOutput(t *testing.T) {
	var out bytes.Buffer
	lp := NewLiveProgress(&out)
	lp.Finish()
	assert.Empty(t, out.String())
}
