package hwerrors

import (
	"errors"
	"strings"
)

// Generation (G) Errors
var (
	ErrGNoValueDomain        = errors.New("G1|NoValueDomain: Field kind has no value domain table.")
	ErrGUnknownInstruction   = errors.New("G2|UnknownInstruction: Mnemonic is not in the instruction table.")
	ErrGUnknownFieldKind     = errors.New("G3|UnknownFieldKind: Instruction table names a field kind that does not exist.")
	ErrGRegisterOverflow     = errors.New("G4|RegisterOverflow: Instruction uses more registers of one class than the state holds.")
	ErrGInvalidInstructionDB = errors.New("G5|InvalidInstructionDB: Instruction table could not be parsed.")
)

// Corpus (C) Errors
var (
	ErrCCorruptCorpus   = errors.New("C1|CorruptCorpus: Corpus body length does not match its case count.")
	ErrCTruncatedCorpus = errors.New("C2|TruncatedCorpus: Corpus body ends before the case count header.")
	ErrCStorage         = errors.New("C3|Storage: Corpus directory could not be read or written.")
)

// Protocol (P) Errors
var (
	ErrPMalformedPacket = errors.New("P1|MalformedPacket: Packet size is inconsistent with its header or command.")
	ErrPPacketTooLarge  = errors.New("P2|PacketTooLarge: Packet size exceeds the negotiated maximum.")
	ErrPReplyMismatch   = errors.New("P3|ReplyMismatch: Reply instruction does not match the outstanding request.")
	ErrPSessionClosed   = errors.New("P4|SessionClosed: Session is closed.")
	ErrPCorpusBusy      = errors.New("P5|CorpusBusy: Corpus is already being streamed by another session.")
	ErrPReplyTimeout    = errors.New("P6|ReplyTimeout: Peer did not reply in time.")
)

// Execution (E) Errors
var (
	ErrEUnsupportedInstruction = errors.New("E1|UnsupportedInstruction: Engine does not implement this instruction.")
	ErrEEngineFault            = errors.New("E2|EngineFault: Engine stopped before the instruction retired.")
)

// Configuration (K) Errors
var (
	ErrKInvalidConfig = errors.New("K1|InvalidConfig: Setting is missing, unknown or out of range.")
)

var registry = []error{
	ErrGNoValueDomain, ErrGUnknownInstruction, ErrGUnknownFieldKind, ErrGRegisterOverflow, ErrGInvalidInstructionDB,
	ErrCCorruptCorpus, ErrCTruncatedCorpus, ErrCStorage,
	ErrPMalformedPacket, ErrPPacketTooLarge, ErrPReplyMismatch, ErrPSessionClosed, ErrPCorpusBusy, ErrPReplyTimeout,
	ErrEUnsupportedInstruction, ErrEEngineFault,
	ErrKInvalidConfig,
}

// sentinel returns the registered error err wraps, or err itself.
func sentinel(err error) error {
	for _, s := range registry {
		if errors.Is(err, s) {
			return s
		}
	}
	return err
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return ""
	}
	errStr := sentinel(err).Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := sentinel(err).Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	parts := strings.SplitN(sentinel(err).Error(), ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
