package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
)

// hashIP returns sha256(ip|salt) in hex, or "" when no salt is configured.
func hashIP(ip, salt string) string {
	if salt == "" || ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip + "|" + salt))
	return hex.EncodeToString(sum[:])
}

// truncateIP masks the host part: a.b.c.x for IPv4, the /48 network for IPv6.
func truncateIP(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return ""
	}
	addr = addr.Unmap()
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.x", b[0], b[1], b[2])
	}
	p, err := addr.Prefix(48)
	if err != nil {
		return ""
	}
	return p.String()
}

func normalizeDueAt(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}

func cloneRecord(rec domain.BookingRecord) domain.BookingRecord {
	out := rec
	out.Events = append(make([]domain.Event, 0, len(rec.Events)+1), rec.Events...)
	if rec.History != nil {
		out.History = append([]domain.HistoryEntry(nil), rec.History...)
	}
	return out
}

func sortRows(rows []domain.ExportRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TS > rows[j].TS })
}
