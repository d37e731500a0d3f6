package db

import (
	"encoding/binary"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/vaanet/guardian-core/node/pkg/common"
)

// encodeGuardianSet serializes a GuardianSet as:
// index(4) || creation_time(8) || expiration_time(8) || count(1) || keys(20*K).
// This is node-local storage framing, distinct from the wire-level
// governance payload encoding in sdk/vaa - it never leaves this process.
func encodeGuardianSet(gs *common.GuardianSet) []byte {
	buf := make([]byte, 0, 4+8+8+1+len(gs.Keys)*20)

	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], gs.Index)
	buf = append(buf, idxBuf[:]...)

	buf = appendUnixBuf(buf, gs.CreationTime)
	buf = appendUnixBuf(buf, gs.ExpirationTime)

	buf = append(buf, uint8(len(gs.Keys)))
	for _, k := range gs.Keys {
		buf = append(buf, k[:]...)
	}
	return buf
}

func appendUnixBuf(buf []byte, t time.Time) []byte {
	var secBuf [8]byte
	var sec int64
	if !t.IsZero() {
		sec = t.Unix()
	}
	binary.BigEndian.PutUint64(secBuf[:], uint64(sec))
	return append(buf, secBuf[:]...)
}

func decodeGuardianSet(raw []byte) (*common.GuardianSet, error) {
	if len(raw) < 4+8+8+1 {
		return nil, fmt.Errorf("guardian set record too short")
	}
	off := 0
	index := binary.BigEndian.Uint32(raw[off:])
	off += 4

	creation := readUnix(raw[off:])
	off += 8
	expiration := readUnix(raw[off:])
	off += 8

	count := int(raw[off])
	off++

	if len(raw[off:]) != count*20 {
		return nil, fmt.Errorf("guardian set record key section does not match declared count")
	}

	keys := make([]ethcommon.Address, count)
	for i := 0; i < count; i++ {
		copy(keys[i][:], raw[off+i*20:off+(i+1)*20])
	}

	return &common.GuardianSet{
		Index:          index,
		Keys:           keys,
		CreationTime:   creation,
		ExpirationTime: expiration,
	}, nil
}

func readUnix(b []byte) time.Time {
	sec := int64(binary.BigEndian.Uint64(b[:8]))
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
