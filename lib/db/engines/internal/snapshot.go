// Package internal holds the snapshot file format shared by the storage engines.
package internal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	MagicNum        = "MAPLEDB\x00" // File format identifier
	SnapshotVersion = 4             // Snapshot format version
	maxChunkLen     = 64 << 20      // Upper bound for a single key or value
)

// --------------------------------------------------------------------------
// Snapshot Format
// --------------------------------------------------------------------------

/*
	Layout (all integers little endian):

	magic(8) | version(1) | serializerNameLen(1) | serializerName | count(8) |
	count * ( keyLen(4) | key | valueLen(4) | value )

	Values are encoded with the serializer named in the header. Entries are written
	sorted by key so that equal states produce equal files.
*/

// WriteSnapshot writes all entries to w using the given serializer.
func WriteSnapshot(w io.Writer, entries map[string]db.Value, s serializer.IValueSerializer) error {
	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 64*1024)

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Write file header
	if _, err := bw.WriteString(MagicNum); err != nil {
		return err
	}
	if err := bw.WriteByte(SnapshotVersion); err != nil {
		return err
	}
	name := s.Name()
	if err := bw.WriteByte(uint8(len(name))); err != nil {
		return err
	}
	if _, err := bw.WriteString(name); err != nil {
		return err
	}

	// Write total entry count
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(keys))); err != nil {
		return err
	}

	// Write entries
	for _, k := range keys {
		data, err := s.Serialize(entries[k])
		if err != nil {
			return fmt.Errorf("encoding %s: %w", k, err)
		}
		if err := writeChunk(bw, []byte(k)); err != nil {
			return err
		}
		if err := writeChunk(bw, data); err != nil {
			return err
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
// Values are decoded with the serializer recorded in the snapshot header.
func ReadSnapshot(r io.Reader) (map[string]db.Value, error) {
	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 64*1024)

	// Read and verify magic number
	magicBytes := make([]byte, len(MagicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return nil, err
	}
	if string(magicBytes) != MagicNum {
		return nil, fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", version, SnapshotVersion)
	}

	// Read serializer name
	nameLen, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, err
	}
	s, err := serializer.ByName(string(name))
	if err != nil {
		return nil, err
	}

	// Read entry count
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	entries := make(map[string]db.Value)
	for i := uint64(0); i < count; i++ {
		key, err := readChunk(br)
		if err != nil {
			return nil, err
		}
		data, err := readChunk(br)
		if err != nil {
			return nil, err
		}
		var v db.Value
		if err := s.Deserialize(data, &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		entries[string(key)] = v
	}

	return entries, nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

func writeChunk(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readChunk(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxChunkLen {
		return nil, fmt.Errorf("chunk of %d bytes exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
