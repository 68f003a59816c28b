package clock

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// NTPSource reads time from an SNTP server over UDP.
type NTPSource struct {
	Addr    string // host:port
	Timeout time.Duration
}

// NewNTPSource returns an SNTP source for addr with a 3s timeout.
func NewNTPSource(addr string) *NTPSource {
	return &NTPSource{Addr: addr, Timeout: 3 * time.Second}
}

func (s *NTPSource) Now() (time.Time, error) {
	conn, err := net.DialTimeout("udp", s.Addr, s.Timeout)
	if err != nil {
		return time.Time{}, fmt.Errorf("dial ntp %s: %w", s.Addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.Timeout)); err != nil {
		return time.Time{}, fmt.Errorf("set ntp deadline: %w", err)
	}

	// SNTP v4 client request: LI=0, VN=4, Mode=3.
	req := make([]byte, 48)
	req[0] = 0x23
	if _, err := conn.Write(req); err != nil {
		return time.Time{}, fmt.Errorf("write ntp request: %w", err)
	}

	resp := make([]byte, 48)
	if _, err := conn.Read(resp); err != nil {
		return time.Time{}, fmt.Errorf("read ntp response: %w", err)
	}

	// Transmit timestamp: seconds and fraction at offset 40.
	secs := binary.BigEndian.Uint32(resp[40:44])
	frac := binary.BigEndian.Uint32(resp[44:48])
	if secs == 0 {
		return time.Time{}, fmt.Errorf("ntp response from %s has zero timestamp", s.Addr)
	}

	nsec := (int64(frac) * int64(time.Second)) >> 32
	return time.Unix(int64(secs)-ntpEpochOffset, nsec), nil
}
