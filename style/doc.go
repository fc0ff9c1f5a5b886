// Package style maps font descriptors to stable style classes and keeps the
// per-document frequency statistics used to decide which classes look like
// headers, body text or footnotes.
//
// A [Registry] belongs to one document. Two descriptors share a class when
// family, style, weight and alignment match exactly and their sizes differ by
// less than [Config.SizeTolerance]; the first descriptor seen becomes the
// class's canonical representative.
//
//	reg := style.NewRegistry()
//	id := reg.Classify(style.FromFont(run.Font, model.AlignLeft))
//	reg.Observe(id, wordCount)
//	if reg.IsLikelyHeader(id) {
//	    ...
//	}
package style
