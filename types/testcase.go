package types

// TestCase is one instruction run: the encoding, the state loaded before it
// and the state observed after it. Output is meaningful only once the case
// has been executed.
type TestCase struct {
	Instr  Instruction   `json:"instr"`
	Input  RegisterState `json:"input"`
	Output RegisterState `json:"output"`
}

// TestFile holds every case generated for one mnemonic. Name is carried by
// the storage layer and is not part of the encoded body.
type TestFile struct {
	Name  string     `json:"name"`
	Tests []TestCase `json:"tests"`
}

// Corpus is an ordered collection of test files.
type Corpus struct {
	Files []*TestFile
}

// NumCases returns the total number of cases across all files.
func (c *Corpus) NumCases() int {
	n := 0
	for _, f := range c.Files {
		n += len(f.Tests)
	}
	return n
}
