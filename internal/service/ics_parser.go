package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"syscall"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：从场馆日历（RFC 5545）推导每天各时段的开始时间。
//
// 规则：
//   - 仅使用 DTSTART；同一天同一开始时间的多个事件视为同一时段（并行场次）
//   - 天序号 = 与最早事件日期相差的天数 + 1
//   - 时段序号 = 当天按开始时间排序后的序号（从 0 开始）
//   - RRULE 不展开：会议日历中的每个时段都是单次事件
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

// icsSlotTime 从日历推导出的一个时段开始时间
type icsSlotTime struct {
	Day       int
	Slot      int
	StartTime string // HH:MM
}

// ErrICSURLNotAllowed URL 协议不受支持，或指向回环、内网、链路本地等非公网地址
var ErrICSURLNotAllowed = errors.New("ICS URL 不允许访问")

// cgnatRange 运营商级 NAT 共享地址段 100.64.0.0/10
var cgnatRange = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// icsClient 只连接公网地址；在拨号时检查解析后的 IP，重定向与 DNS 变更同样受限
var icsClient = newICSClient(publicOnlyControl)

func newICSClient(control func(network, address string, c syscall.RawConn) error) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: control}
	return &http.Client{
		Timeout: icsFetchTimeout,
		Transport: &http.Transport{
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("重定向次数过多")
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return ErrICSURLNotAllowed
			}
			return nil
		},
	}
}

func publicOnlyControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrICSURLNotAllowed, host)
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case cgnatRange.Contains(ip):
		return false
	}
	return true
}

// normalizeICSURL 仅接受 http、https 与 webcal（按 https 访问）
func normalizeICSURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSURLNotAllowed, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "webcal":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("%w: 不支持的协议 %q", ErrICSURLNotAllowed, u.Scheme)
	}
	if u.Hostname() == "" || u.User != nil {
		return "", ErrICSURLNotAllowed
	}
	return u.String(), nil
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return fetchICS(ctx, icsClient, rawURL)
}

func fetchICS(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	u, err := normalizeICSURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSURLNotAllowed, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// parseSlotTimesICS 解析 ICS 内容为时段开始时间；无法解析开始时间的事件被跳过
func parseSlotTimesICS(reader io.Reader, loc *time.Location) ([]icsSlotTime, int, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	// 阶段 1: 收集所有开始时间
	var (
		starts  []time.Time
		skipped int
	)
	for _, evt := range cal.Events() {
		t, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
		if err != nil {
			skipped++
			continue
		}
		starts = append(starts, t)
	}
	if len(starts) == 0 {
		return nil, skipped, nil
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	// 阶段 2: 按日期分组并去重
	first := dateOf(starts[0])
	var (
		result  []icsSlotTime
		lastDay int
		slot    int
		seen    = make(map[string]bool)
	)
	for _, t := range starts {
		day := int(dateOf(t).Sub(first).Hours()/24) + 1
		clock := t.Format("15:04")
		key := fmt.Sprintf("%d %s", day, clock)
		if seen[key] {
			continue
		}
		seen[key] = true

		if day != lastDay {
			lastDay, slot = day, 0
		}
		result = append(result, icsSlotTime{Day: day, Slot: slot, StartTime: clock})
		slot++
	}
	return result, skipped, nil
}

// dateOf 当天零点（保留时区）
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 全天事件没有时段含义
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
	}

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
