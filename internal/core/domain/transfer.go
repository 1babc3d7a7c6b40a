package domain

// TransferRequest describes one pending transfer or redemption. It is passed
// by value to every hook invocation of a pipeline run and is never mutated by
// extensions.
type TransferRequest struct {
	Id           string
	Token        string
	Payload      []byte
	Partition    string
	Operator     string
	From         string
	To           string
	Amount       uint64
	Data         []byte
	OperatorData []byte
}

// IsRedemption reports whether the request burns the amount instead of
// crediting a destination.
func (r TransferRequest) IsRedemption() bool {
	return len(r.To) == 0
}
