package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"
)

// headerSize 为记录头的固定长度：1 字节版本 + 8 字节过期秒数 + 8 字节创建时间。
const headerSize = 17

// errCorruptHeader 表示文件存在但无法解析为记录头，仅在包内用于判定无效记录。
var errCorruptHeader = errors.New("corrupt cache header")

// header 与磁盘布局逐字段对应，binary 编码不做对齐填充。
type header struct {
	Version    int8
	Expiration float64
	CreatedAt  float64
}

// Record 表示一条已解析的缓存记录（记录头 + 正文）。
type Record struct {
	Version    int8
	Expiration time.Duration
	CreatedAt  time.Time
	Content    []byte
}

// ExpiresAt 返回记录按整秒 TTL 计算的失效时间点。
func (r Record) ExpiresAt() time.Time {
	return r.CreatedAt.Add(time.Duration(wholeSeconds(r.Expiration)) * time.Second)
}

// encodeRecord 按小端序拼接记录头与正文，便于一次 Write 落盘。
func encodeRecord(version int8, expiration time.Duration, createdAt time.Time, content []byte) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(content)))
	h := header{
		Version:    version,
		Expiration: expiration.Seconds(),
		CreatedAt:  float64(createdAt.Unix()),
	}
	// 写入 bytes.Buffer 不会失败。
	_ = binary.Write(buf, binary.LittleEndian, h)
	buf.Write(content)
	return buf.Bytes()
}

// decodeRecord 解析完整文件内容；长度不足记录头时返回 errCorruptHeader。
func decodeRecord(data []byte) (*Record, error) {
	if len(data) < headerSize {
		return nil, errCorruptHeader
	}
	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errCorruptHeader
		}
		return nil, err
	}
	if math.IsNaN(h.Expiration) || math.IsNaN(h.CreatedAt) || math.IsInf(h.CreatedAt, 0) {
		return nil, errCorruptHeader
	}

	content := make([]byte, len(data)-headerSize)
	copy(content, data[headerSize:])

	return &Record{
		Version:    h.Version,
		Expiration: secondsToDuration(h.Expiration),
		CreatedAt:  time.Unix(int64(h.CreatedAt), 0),
		Content:    content,
	}, nil
}

// secondsToDuration 将浮点秒转换为 Duration，超出范围时截断到 Duration 上下限。
func secondsToDuration(seconds float64) time.Duration {
	ns := seconds * float64(time.Second)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

// wholeSeconds 将 TTL 截断为整秒，亚秒级 TTL 视为 0。
func wholeSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
