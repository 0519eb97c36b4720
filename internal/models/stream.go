package models

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// StreamOutput writes the node-to-node binary encoding.
type StreamOutput struct {
	w   io.Writer
	err error
	buf [binary.MaxVarintLen64]byte
}

func NewStreamOutput(w io.Writer) *StreamOutput {
	return &StreamOutput{w: w}
}

// Err returns the first write error.
func (o *StreamOutput) Err() error {
	return o.err
}

func (o *StreamOutput) write(p []byte) {
	if o.err != nil {
		return
	}
	_, o.err = o.w.Write(p)
}

func (o *StreamOutput) WriteBool(v bool) {
	if v {
		o.write([]byte{1})
		return
	}
	o.write([]byte{0})
}

func (o *StreamOutput) WriteInt(v int32) {
	binary.BigEndian.PutUint32(o.buf[:4], uint32(v))
	o.write(o.buf[:4])
}

func (o *StreamOutput) WriteLong(v int64) {
	binary.BigEndian.PutUint64(o.buf[:8], uint64(v))
	o.write(o.buf[:8])
}

func (o *StreamOutput) WriteVInt(v int) {
	n := binary.PutUvarint(o.buf[:], uint64(uint32(v)))
	o.write(o.buf[:n])
}

func (o *StreamOutput) WriteString(s string) {
	o.WriteVInt(len(s))
	o.write([]byte(s))
}

func (o *StreamOutput) WriteOptionalInt(v *int) {
	if v == nil {
		o.WriteBool(false)
		return
	}
	o.WriteBool(true)
	o.WriteInt(int32(*v))
}

func (o *StreamOutput) WriteOptionalString(s *string) {
	if s == nil {
		o.WriteBool(false)
		return
	}
	o.WriteBool(true)
	o.WriteString(*s)
}

func (o *StreamOutput) WriteStatus(status int) {
	ordinal, err := StatusOrdinal(status)
	if err != nil {
		if o.err == nil {
			o.err = err
		}
		return
	}
	o.WriteVInt(ordinal)
}

// Limits on lengths and counts read off the wire.
const (
	MaxStreamStringLen = 1 << 20
	MaxStreamItems     = 1 << 16
)

// StreamContentType is the media type of the binary encoding.
const StreamContentType = "application/vnd.opensearch.alerting.stream"

// StreamInput reads what StreamOutput wrote, in the same order.
type StreamInput struct {
	r   *bufio.Reader
	err error
}

func NewStreamInput(r io.Reader) *StreamInput {
	return &StreamInput{r: bufio.NewReader(r)}
}

// Err returns the first read error.
func (in *StreamInput) Err() error {
	return in.err
}

func (in *StreamInput) read(n int) []byte {
	p := make([]byte, n)
	if in.err != nil {
		return p
	}
	_, in.err = io.ReadFull(in.r, p)
	return p
}

func (in *StreamInput) ReadBool() bool {
	return in.read(1)[0] != 0
}

func (in *StreamInput) ReadInt() int32 {
	return int32(binary.BigEndian.Uint32(in.read(4)))
}

func (in *StreamInput) ReadLong() int64 {
	return int64(binary.BigEndian.Uint64(in.read(8)))
}

func (in *StreamInput) ReadVInt() int {
	if in.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(in.r)
	if err != nil {
		in.err = err
		return 0
	}
	return int(int32(uint32(v)))
}

func (in *StreamInput) ReadString() string {
	n := in.ReadVInt()
	if n < 0 || n > MaxStreamStringLen {
		in.fail(fmt.Errorf("string length %d out of range", n))
		return ""
	}
	return string(in.read(n))
}

// count validates an item count read off the wire.
func (in *StreamInput) count(n int) int {
	if in.err != nil {
		return 0
	}
	if n < 0 || n > MaxStreamItems {
		in.fail(fmt.Errorf("item count %d out of range", n))
		return 0
	}
	return n
}

// capacity bounds a preallocation; items are appended past it as they arrive.
func capacity(n int) int {
	return min(n, 64)
}

func (in *StreamInput) ReadOptionalInt() *int {
	if !in.ReadBool() {
		return nil
	}
	v := int(in.ReadInt())
	return &v
}

func (in *StreamInput) ReadOptionalString() *string {
	if !in.ReadBool() {
		return nil
	}
	s := in.ReadString()
	return &s
}

func (in *StreamInput) ReadStatus() int {
	ordinal := in.ReadVInt()
	if in.err != nil {
		return 0
	}
	status, err := StatusFromOrdinal(ordinal)
	if err != nil {
		in.fail(err)
	}
	return status
}

func (in *StreamInput) fail(err error) {
	if in.err == nil {
		in.err = err
	}
}

// WriteStream encodes the account.
func (a EmailAccount) WriteStream(out *StreamOutput) {
	out.WriteString(a.ID)
	out.WriteLong(a.Version)
	out.WriteInt(int32(a.SchemaVersion))
	out.WriteString(a.Name)
	out.WriteString(a.Email)
	out.WriteString(a.Host)
	out.WriteInt(int32(a.Port))
	out.WriteString(string(a.Method))
	out.WriteOptionalString(a.Username)
	out.WriteOptionalString(a.Password)
}

// ReadEmailAccount decodes an account written by EmailAccount.WriteStream.
func ReadEmailAccount(in *StreamInput) EmailAccount {
	return EmailAccount{
		ID:            in.ReadString(),
		Version:       in.ReadLong(),
		SchemaVersion: int(in.ReadInt()),
		Name:          in.ReadString(),
		Email:         in.ReadString(),
		Host:          in.ReadString(),
		Port:          int(in.ReadInt()),
		Method:        MethodType(in.ReadString()),
		Username:      in.ReadOptionalString(),
		Password:      in.ReadOptionalString(),
	}
}

// WriteStream encodes the group.
func (g EmailGroup) WriteStream(out *StreamOutput) {
	out.WriteString(g.ID)
	out.WriteLong(g.Version)
	out.WriteInt(int32(g.SchemaVersion))
	out.WriteString(g.Name)
	out.WriteVInt(len(g.Emails))
	for _, e := range g.Emails {
		out.WriteString(e.Email)
	}
}

// ReadEmailGroup decodes a group written by EmailGroup.WriteStream.
func ReadEmailGroup(in *StreamInput) EmailGroup {
	g := EmailGroup{
		ID:            in.ReadString(),
		Version:       in.ReadLong(),
		SchemaVersion: int(in.ReadInt()),
		Name:          in.ReadString(),
	}
	n := in.count(in.ReadVInt())
	g.Emails = make([]EmailEntry, 0, capacity(n))
	for i := 0; i < n && in.Err() == nil; i++ {
		g.Emails = append(g.Emails, EmailEntry{Email: in.ReadString()})
	}
	return g
}

// WriteStream encodes status, optional total, item count, then each item.
func (r SearchEmailAccountResponse) WriteStream(out *StreamOutput) error {
	out.WriteStatus(r.Status)
	out.WriteOptionalInt(r.TotalEmailAccounts)
	out.WriteInt(int32(len(r.EmailAccounts)))
	for _, a := range r.EmailAccounts {
		a.WriteStream(out)
	}
	return out.Err()
}

// ReadSearchEmailAccountResponse reverses SearchEmailAccountResponse.WriteStream.
func ReadSearchEmailAccountResponse(in *StreamInput) (SearchEmailAccountResponse, error) {
	r := SearchEmailAccountResponse{Status: in.ReadStatus()}
	r.TotalEmailAccounts = in.ReadOptionalInt()
	n := in.count(int(in.ReadInt()))
	r.EmailAccounts = make([]EmailAccount, 0, capacity(n))
	for i := 0; i < n && in.Err() == nil; i++ {
		r.EmailAccounts = append(r.EmailAccounts, ReadEmailAccount(in))
	}
	if err := in.Err(); err != nil {
		return SearchEmailAccountResponse{}, fmt.Errorf("failed to read email account response: %w", err)
	}
	return r, nil
}

// WriteStream encodes status, optional total, item count, then each item.
func (r SearchEmailGroupResponse) WriteStream(out *StreamOutput) error {
	out.WriteStatus(r.Status)
	out.WriteOptionalInt(r.TotalEmailGroups)
	out.WriteInt(int32(len(r.EmailGroups)))
	for _, g := range r.EmailGroups {
		g.WriteStream(out)
	}
	return out.Err()
}

// ReadSearchEmailGroupResponse reverses SearchEmailGroupResponse.WriteStream.
func ReadSearchEmailGroupResponse(in *StreamInput) (SearchEmailGroupResponse, error) {
	r := SearchEmailGroupResponse{Status: in.ReadStatus()}
	r.TotalEmailGroups = in.ReadOptionalInt()
	n := in.count(int(in.ReadInt()))
	r.EmailGroups = make([]EmailGroup, 0, capacity(n))
	for i := 0; i < n && in.Err() == nil; i++ {
		r.EmailGroups = append(r.EmailGroups, ReadEmailGroup(in))
	}
	if err := in.Err(); err != nil {
		return SearchEmailGroupResponse{}, fmt.Errorf("failed to read email group response: %w", err)
	}
	return r, nil
}
