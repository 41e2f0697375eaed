package writer

import "math"

// FunctionWriter is the append-only word stream of a single function body.
// Three primitives support forward jumps and retroactive adaptation:
// placeholders reserve a word to be filled later, count placeholders fill
// themselves with the number of words written in between, and insertion
// points allow prepending a short sequence once the storage form of an
// already parsed expression is known.
type FunctionWriter struct {
	words []Instruction
}

func NewFunctionWriter() *FunctionWriter {
	return &FunctionWriter{words: make([]Instruction, 0, 64)}
}

// WriteInstruction appends instruction words.
func (w *FunctionWriter) WriteInstruction(words ...Instruction) {
	w.words = append(w.words, words...)
}

// Count returns the number of words written so far.
func (w *FunctionWriter) Count() int {
	return len(w.words)
}

// Words returns the finished word stream.
func (w *FunctionWriter) Words() []Instruction {
	return w.words
}

// WriteDoubleCoin writes the IEEE-754 value split across three words: the
// normalized fraction scaled to 62 bits in two words, then the exponent.
func (w *FunctionWriter) WriteDoubleCoin(value float64) {
	frac, exp := math.Frexp(value)
	scaled := int64(frac * float64(int64(1)<<62))
	w.WriteInstruction(Instruction(uint64(scaled)>>32), Instruction(uint64(scaled)&0xFFFFFFFF), Instruction(int32(exp)))
}

// Placeholder is a reserved word whose value is supplied later. Every
// placeholder must be committed on every exit path.
type Placeholder struct {
	writer    *FunctionWriter
	index     int
	committed bool
}

// WriteInstructionPlaceholder reserves one word.
func (w *FunctionWriter) WriteInstructionPlaceholder() *Placeholder {
	p := &Placeholder{writer: w, index: len(w.words)}
	w.words = append(w.words, 0)
	return p
}

// Write commits the placeholder.
func (p *Placeholder) Write(value Instruction) {
	p.writer.words[p.index] = value
	p.committed = true
}

// Committed reports whether the placeholder was filled.
func (p *Placeholder) Committed() bool { return p.committed }

// CountPlaceholder reserves a word that is later filled with the number of
// words written between reservation and commit.
type CountPlaceholder struct {
	Placeholder
}

// WriteInstructionsCountPlaceholderCoin reserves a count word.
func (w *FunctionWriter) WriteInstructionsCountPlaceholderCoin() *CountPlaceholder {
	p := &CountPlaceholder{Placeholder{writer: w, index: len(w.words)}}
	w.words = append(w.words, 0)
	return p
}

// Commit fills the count word with the number of words written since the
// reservation.
func (p *CountPlaceholder) Commit() {
	p.Write(Instruction(len(p.writer.words) - p.index - 1))
}

// InsertionPoint records a position for later insertion of a short
// sequence, e.g. a box or unbox adapter prepended once the producing
// expression's storage is known.
type InsertionPoint struct {
	writer *FunctionWriter
	index  int
}

// GetInsertionPoint records the current position.
func (w *FunctionWriter) GetInsertionPoint() *InsertionPoint {
	return &InsertionPoint{writer: w, index: len(w.words)}
}

// Insert splices the words in at the recorded position. Insertion points
// recorded later in the stream shift accordingly and must not be used
// before this one.
func (p *InsertionPoint) Insert(words ...Instruction) {
	w := p.writer
	w.words = append(w.words, words...)
	copy(w.words[p.index+len(words):], w.words[p.index:])
	copy(w.words[p.index:], words)
	p.index += len(words)
}
