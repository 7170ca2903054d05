package printdoc

// Exported test-only accessors for unexported fields.
// This file is compiled only during tests and does not affect the public API.

// ConfigForTest returns a copy of the processor configuration for assertions in tests.
func (processor *Processor) ConfigForTest() Options { return processor.config }
