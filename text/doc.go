// Package text holds the text utilities block reconstruction depends on:
// sentence tokenization, word segmentation of letter-spaced runs, Unicode
// normalization and writing direction detection.
//
// The pipeline reaches the tokenizer and the segmenter only through the
// [SentenceTokenizer] and [WordSegmenter] interfaces, so callers can plug in
// their own implementations. The defaults are pure and keep no state between
// calls:
//
//	tok := text.NewSentenceTokenizer()
//	sentences := tok.Sentences("Dr. Smith arrived. He sat down.")
//	// ["Dr. Smith arrived.", "He sat down."]
//
//	seg := text.NewDictionarySegmenter()
//	words := seg.Segment("TERMSANDCONDITIONS")
//	// ["TERMS", "AND", "CONDITIONS"]
//
// # Text Direction
//
// [DetectDirection] reports the dominant writing direction of a string so
// runs on a right-to-left line can be ordered from the right edge.
package text
