package relocate

// ProgressSink observes one move. Implementations must not block.
type ProgressSink interface {
	OnProgress(current, max int64)
	OnStatus(text string)
	OnComplete(success bool)
}

// NopSink discards progress.
type NopSink struct{}

func (NopSink) OnProgress(int64, int64) {}

func (NopSink) OnStatus(string) {}

func (NopSink) OnComplete(bool) {}
