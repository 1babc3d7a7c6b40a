package errors

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

// Is reports whether err carries this code.
func (c Code[MT]) Is(err error) bool {
	coded, ok := err.(Error)
	if !ok {
		return false
	}
	return coded.Code() == c.Code
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) Unwrap() error {
	return e.cause
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type ExtensionMetadata struct {
	Extension string `json:"extension"`
}

type StateTransitionMetadata struct {
	Extension string `json:"extension"`
	State     string `json:"state"`
}

type CapabilityMetadata struct {
	Extension  string `json:"extension"`
	Capability string `json:"capability"`
}

type PrincipalMetadata struct {
	Principal string `json:"principal"`
}

type WriterMetadata struct {
	Caller string `json:"caller"`
	Writer string `json:"writer"`
}

type BalanceMetadata struct {
	Account   string `json:"account"`
	Partition string `json:"partition"`
	Amount    uint64 `json:"amount"`
	Balance   uint64 `json:"balance"`
}

type TransferMetadata struct {
	TransferId string `json:"transfer_id"`
	Extension  string `json:"extension"`
}

type LogicMetadata struct {
	Version string `json:"version"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}

var EXTENSION_ALREADY_REGISTERED = Code[ExtensionMetadata]{
	1,
	"EXTENSION_ALREADY_REGISTERED",
	grpccodes.AlreadyExists,
}

var EXTENSION_NOT_REGISTERED = Code[ExtensionMetadata]{
	2,
	"EXTENSION_NOT_REGISTERED",
	grpccodes.NotFound,
}

var INVALID_STATE_TRANSITION = Code[StateTransitionMetadata]{
	3,
	"INVALID_STATE_TRANSITION",
	grpccodes.FailedPrecondition,
}

var CAPABILITY_MISMATCH = Code[CapabilityMetadata]{
	4,
	"CAPABILITY_MISMATCH",
	grpccodes.InvalidArgument,
}

var UNAUTHORIZED = Code[PrincipalMetadata]{5, "UNAUTHORIZED", grpccodes.PermissionDenied}

var WRITE_ACCESS_DENIED = Code[WriterMetadata]{
	6,
	"WRITE_ACCESS_DENIED",
	grpccodes.PermissionDenied,
}

var BALANCE_TOO_LOW = Code[BalanceMetadata]{7, "BALANCE_TOO_LOW", grpccodes.FailedPrecondition}

var TRANSFER_REJECTED = Code[TransferMetadata]{
	8,
	"TRANSFER_REJECTED",
	grpccodes.FailedPrecondition,
}

var EXTENSION_UNREACHABLE = Code[ExtensionMetadata]{
	9,
	"EXTENSION_UNREACHABLE",
	grpccodes.Unavailable,
}

var UNKNOWN_LOGIC_VERSION = Code[LogicMetadata]{
	10,
	"UNKNOWN_LOGIC_VERSION",
	grpccodes.NotFound,
}

var INVALID_TRANSFER = Code[TransferMetadata]{
	11,
	"INVALID_TRANSFER",
	grpccodes.InvalidArgument,
}
