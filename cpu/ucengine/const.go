package ucengine

// Name identifies the engine on the command line and in reports.
const Name = "unicorn"

const (
	CodeBase = 0x02000000
	CodeSize = 0x1000

	blr   = 0x4E800020
	msrFP = 0x2000
)
