package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObserveRenumbersParts(t *testing.T) {
	rec := &Recorder{}
	r := NewReporter(rec)

	r.Observe("b1", []string{"Uploaded part 3", "Validating SQL"})
	r.Observe("b2", []string{"Uploaded part 1", "Uploaded part 7"})
	r.Observe("b2", nil)

	assert.Equal(t, []string{"Uploaded part 1", "Validating SQL", "Uploaded part 2", "Uploaded part 3"}, rec.Messages())
	assert.Equal(t, 3, r.Parts())
	assert.Equal(t, "b2", r.Bookmark())
	assert.Equal(t, rec.Messages(), r.Lines())

	var bookmarks []string
	for _, ev := range rec.Events {
		if ev.Type == EventBookmark {
			bookmarks = append(bookmarks, ev.Bookmark)
		}
	}
	assert.Equal(t, []string{"b1", "b2"}, bookmarks)
}

func TestStepEvents(t *testing.T) {
	rec := &Recorder{}
	r := NewReporter(rec)
	r.Step(StepHash, "Checking file")
	r.Step(StepUpload, "Uploading")

	assert.Len(t, rec.Events, 2)
	assert.Equal(t, StepUpload, rec.Events[1].Step)
}

func TestNilSinkDiscards(t *testing.T) {
	r := NewReporter(nil)
	r.Observe("b", []string{"Uploaded part 9"})
	assert.Equal(t, 1, r.Parts())
}

func TestRendererPrintsMessages(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewRenderer(&buf))
	r.Observe("b", []string{"Uploaded part 5", "Processed 10 queries"})

	out := buf.String()
	assert.Contains(t, out, "Uploaded part 1")
	assert.NotContains(t, out, "Uploaded part 5")
	assert.Contains(t, out, "Processed 10 queries")
}
