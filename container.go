package huffpack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	containerVersion = uint16(1)

	maxContainerStages = 64
	maxMetadataBytes   = 64 << 20 // 64 MiB
)

// Wire format (version 1):
//
//	tagLen   = uint8
//	tag      = tagLen bytes, e.g. "huffman"
//	version  = uint16 little-endian
//	metaLen  = uint32 little-endian
//	meta     = metaLen bytes:
//	  stageCnt = uint16 little-endian
//	  repeat stageCnt times:
//	    nameLen  = uint8
//	    paramLen = uint16 little-endian
//	    dataLen  = uint32 little-endian
//	    name     = nameLen bytes
//	    params   = paramLen bytes
//	    payload  = dataLen bytes
//	payload  = every remaining byte
//
// Metadata is length-prefixed at every level, so the payload is never scanned
// for a delimiter and may hold any byte value.
type container struct {
	algorithm string
	stages    []stage
	payload   []byte
}

type stage struct {
	name    string
	params  []byte
	payload []byte
}

type wireStageHeader struct {
	name     string
	paramLen uint16
	dataLen  uint32
}

func (c *container) stage(name string) (stage, bool) {
	for _, s := range c.stages {
		if s.name == name {
			return s, true
		}
	}
	return stage{}, false
}

func writeBytes(w io.Writer, b []byte) (int64, error) {
	n, err := w.Write(b)
	if err != nil {
		return int64(n), err
	}
	if n != len(b) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

func writeStage(w io.Writer, name string, params []byte, payload []byte) (int64, error) {
	if len(name) == 0 || len(name) > 255 {
		return 0, fmt.Errorf("invalid stage name length: %d", len(name))
	}
	if len(params) > int(^uint16(0)) {
		return 0, fmt.Errorf("stage params too large for %q: %d", name, len(params))
	}
	if len(payload) > maxMetadataBytes {
		return 0, fmt.Errorf("stage payload too large for %q: %d", name, len(payload))
	}

	var hdr [7]byte
	hdr[0] = uint8(len(name))
	binary.LittleEndian.PutUint16(hdr[1:3], uint16(len(params)))
	binary.LittleEndian.PutUint32(hdr[3:7], uint32(len(payload)))

	var total int64
	for _, b := range [][]byte{hdr[:], []byte(name), params, payload} {
		n, err := writeBytes(w, b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func readStageHeader(r io.Reader) (wireStageHeader, int64, error) {
	var hdr [7]byte
	n, err := io.ReadFull(r, hdr[:])
	total := int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}
	nameLen := hdr[0]
	if nameLen == 0 {
		return wireStageHeader{}, total, fmt.Errorf("stage name length must be > 0")
	}
	dataLen := binary.LittleEndian.Uint32(hdr[3:7])
	if dataLen > maxMetadataBytes {
		return wireStageHeader{}, total, fmt.Errorf("stage payload too large: %d", dataLen)
	}

	name := make([]byte, int(nameLen))
	n, err = io.ReadFull(r, name)
	total += int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}
	return wireStageHeader{
		name:     string(name),
		paramLen: binary.LittleEndian.Uint16(hdr[1:3]),
		dataLen:  dataLen,
	}, total, nil
}

func (c *container) encodeMetadata() ([]byte, error) {
	if len(c.stages) > maxContainerStages {
		return nil, fmt.Errorf("too many stages: %d", len(c.stages))
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(c.stages))); err != nil {
		return nil, err
	}
	for _, s := range c.stages {
		if _, err := writeStage(&buf, s.name, s.params, s.payload); err != nil {
			return nil, err
		}
	}
	if buf.Len() > maxMetadataBytes {
		return nil, fmt.Errorf("metadata too large: %d", buf.Len())
	}
	return buf.Bytes(), nil
}

// WriteTo serializes the container.
func (c *container) WriteTo(w io.Writer) (int64, error) {
	if len(c.algorithm) == 0 || len(c.algorithm) > 255 {
		return 0, fmt.Errorf("invalid algorithm tag length: %d", len(c.algorithm))
	}
	meta, err := c.encodeMetadata()
	if err != nil {
		return 0, err
	}

	hdr := make([]byte, 0, 1+len(c.algorithm)+2+4)
	hdr = append(hdr, uint8(len(c.algorithm)))
	hdr = append(hdr, c.algorithm...)
	hdr = binary.LittleEndian.AppendUint16(hdr, containerVersion)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(meta)))

	var total int64
	for _, b := range [][]byte{hdr, meta, c.payload} {
		n, err := writeBytes(w, b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadFrom deserializes a container, consuming r to EOF for the payload.
func (c *container) ReadFrom(r io.Reader) (int64, error) {
	var total int64

	var tagLen [1]byte
	n, err := io.ReadFull(r, tagLen[:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read algorithm tag length at offset 0: %w", err)
	}
	if tagLen[0] == 0 {
		return total, fmt.Errorf("missing algorithm tag at offset 0")
	}
	tag := make([]byte, int(tagLen[0]))
	tagOffset := total
	n, err = io.ReadFull(r, tag)
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read algorithm tag at offset %d: %w", tagOffset, err)
	}

	var fixed [6]byte
	versionOffset := total
	n, err = io.ReadFull(r, fixed[:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read container header at offset %d: %w", versionOffset, err)
	}
	if version := binary.LittleEndian.Uint16(fixed[:2]); version != containerVersion {
		return total, fmt.Errorf("unsupported container version at offset %d: %d", versionOffset, version)
	}
	metaLen := binary.LittleEndian.Uint32(fixed[2:])
	if metaLen > maxMetadataBytes {
		return total, fmt.Errorf("metadata too large at offset %d: %d", versionOffset+2, metaLen)
	}

	metaOffset := total
	// metaLen is untrusted: the buffer grows only with bytes actually present.
	meta, err := io.ReadAll(io.LimitReader(r, int64(metaLen)))
	total += int64(len(meta))
	if err != nil {
		return total, fmt.Errorf("read metadata at offset %d: %w", metaOffset, err)
	}
	if len(meta) != int(metaLen) {
		return total, fmt.Errorf("read metadata at offset %d: need %d bytes, got %d: %w", metaOffset, metaLen, len(meta), io.ErrUnexpectedEOF)
	}
	stages, err := decodeMetadata(meta, metaOffset)
	if err != nil {
		return total, err
	}

	payload, err := io.ReadAll(r)
	total += int64(len(payload))
	if err != nil {
		return total, fmt.Errorf("read payload at offset %d: %w", total, err)
	}

	*c = container{
		algorithm: string(tag),
		stages:    stages,
		payload:   payload,
	}
	return total, nil
}

func decodeMetadata(meta []byte, base int64) ([]stage, error) {
	r := bytes.NewReader(meta)
	total := base

	var stageCount uint16
	if err := binary.Read(r, binary.LittleEndian, &stageCount); err != nil {
		return nil, fmt.Errorf("read stage count at offset %d: %w", total, err)
	}
	if stageCount > maxContainerStages {
		return nil, fmt.Errorf("invalid stage count at offset %d: %d", total, stageCount)
	}
	total += 2

	stages := make([]stage, 0, stageCount)
	seen := make(map[string]bool, stageCount)
	for i := 0; i < int(stageCount); i++ {
		headerOffset := total
		header, n, err := readStageHeader(r)
		total += n
		if err != nil {
			return nil, fmt.Errorf("read stage header at offset %d (stage index %d): %w", headerOffset, i, err)
		}
		if seen[header.name] {
			return nil, fmt.Errorf("duplicate stage %q at stage index %d", header.name, i)
		}
		seen[header.name] = true

		bodyOffset := total
		bodyLen := int(header.paramLen) + int(header.dataLen)
		if bodyLen > r.Len() {
			return nil, fmt.Errorf("stage %q at offset %d (stage index %d) needs %d bytes, %d left: %w", header.name, bodyOffset, i, bodyLen, r.Len(), io.ErrUnexpectedEOF)
		}
		body := make([]byte, bodyLen)
		nBody, err := io.ReadFull(r, body)
		total += int64(nBody)
		if err != nil {
			return nil, fmt.Errorf("read stage %q body at offset %d (stage index %d): %w", header.name, bodyOffset, i, err)
		}
		stages = append(stages, stage{
			name:    header.name,
			params:  body[:header.paramLen],
			payload: body[header.paramLen:],
		})
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("metadata trailing bytes at offset %d: %d", total, r.Len())
	}
	return stages, nil
}

func (c *container) marshal() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseContainer(data []byte) (*container, error) {
	c := &container{}
	if _, err := c.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return c, nil
}
