package txdata

import (
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/ccoin/masp/pkg/types"
)

// TxIn is a transparent input. At build time (before apply_signatures)
// ScriptSig is empty; the bundle's signing step fills it in.
type TxIn struct {
	PrevTxID  types.Hash
	PrevIndex uint32
	ScriptSig []byte
	Sequence  uint32
}

func writeTxIn(w io.Writer, in TxIn) error {
	if _, err := w.Write(in.PrevTxID[:]); err != nil {
		return err
	}
	if err := writeUint32(w, in.PrevIndex); err != nil {
		return err
	}
	if err := writeVarBytes(w, in.ScriptSig); err != nil {
		return err
	}
	return writeUint32(w, in.Sequence)
}

func readTxIn(r io.Reader) (TxIn, error) {
	var in TxIn
	if _, err := io.ReadFull(r, in.PrevTxID[:]); err != nil {
		return TxIn{}, err
	}
	idx, err := readUint32(r)
	if err != nil {
		return TxIn{}, err
	}
	in.PrevIndex = idx
	script, err := readVarBytes(r)
	if err != nil {
		return TxIn{}, err
	}
	in.ScriptSig = script
	seq, err := readUint32(r)
	if err != nil {
		return TxIn{}, err
	}
	in.Sequence = seq
	return in, nil
}

// TxOut is a transparent output.
type TxOut struct {
	Asset   types.AssetType
	Value   int64
	Address types.Address
}

func writeTxOut(w io.Writer, out TxOut) error {
	if _, err := w.Write(out.Asset[:]); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(out.Value)); err != nil {
		return err
	}
	_, err := w.Write(out.Address[:])
	return err
}

func readTxOut(r io.Reader) (TxOut, error) {
	var out TxOut
	if _, err := io.ReadFull(r, out.Asset[:]); err != nil {
		return TxOut{}, err
	}
	v, err := readUint64(r)
	if err != nil {
		return TxOut{}, err
	}
	out.Value = int64(v)
	if _, err := io.ReadFull(r, out.Address[:]); err != nil {
		return TxOut{}, err
	}
	return out, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, err
	}
	if n > maxVectorLen {
		return nil, invalidInput("script too large")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
