package bot

// Advance returns the long-poll offset after observing updateID. The
// offset only moves forward, and it must be advanced for every update
// in a batch even when handling that update fails, so a poison update
// cannot stall the stream.
func Advance(offset, updateID int64) int64 {
	if next := updateID + 1; next > offset {
		return next
	}
	return offset
}
