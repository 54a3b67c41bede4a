// Package amulec is a client for aMule's External Connections (EC)
// protocol: it opens a TCP connection to a running aMule daemon, completes
// a version-negotiated authentication handshake, and exchanges
// request/response packets to query status, drive searches, manage the
// download queue, and control in-progress downloads.
//
// The client is strictly synchronous: at most one request is ever in
// flight, and a Client is not safe for concurrent use by multiple
// goroutines. A caller wanting parallelism should open multiple
// connections.
package amulec

import (
	"bufio"
	"errors"
	"net"
	"strconv"

	"github.com/go-amule/amulec/internal/codes"
	"github.com/go-amule/amulec/internal/handshake"
	"github.com/go-amule/amulec/internal/wire/packet"
	"github.com/go-amule/amulec/internal/wire/tag"
)

type state int

const (
	stateDisconnected state = iota
	stateConnected
)

// Client is a synchronous EC protocol connection. The zero value is a
// disconnected client, the same one NewClient returns.
type Client struct {
	state state

	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	table           *codes.Table
	protocolVersion codes.Version
	serverVersion   string
}

// NewClient returns a disconnected client ready for Connect.
func NewClient() *Client {
	return &Client{state: stateDisconnected}
}

// Connect dials host:port, then runs the authentication handshake with
// password, client_name and client_version. On any failure the socket (if
// one was opened) is closed before the error is returned.
func (c *Client) Connect(host string, port int, password, clientName, clientVersion string) error {
	if c.state == stateConnected {
		return ErrAlreadyConnected
	}

	conn, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return ErrNoAddresses
		}
		return &ConnectionError{Op: "dial", Err: err}
	}

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	result, err := handshake.Run(
		func(p *packet.Packet) error {
			if err := p.Write(writer); err != nil {
				return &IOError{Op: "write", Err: err}
			}
			if err := writer.Flush(); err != nil {
				return &IOError{Op: "flush", Err: err}
			}
			return nil
		},
		func() (*packet.Packet, error) {
			p, err := packet.Read(reader)
			if err != nil {
				return nil, classifyReadErr("read", err)
			}
			return p, nil
		},
		password, clientName, clientVersion,
	)
	if err != nil {
		conn.Close()
		if errors.Is(err, handshake.ErrAuthFailed) {
			return ErrAuthFailed
		}
		return err
	}

	c.conn = conn
	c.reader = reader
	c.writer = writer
	c.table = result.Table
	c.protocolVersion = result.Table.Version
	c.serverVersion = result.ServerVersion
	c.state = stateConnected
	return nil
}

// Disconnect closes the connection and resets the client so further calls
// fail with ErrNotConnected until Connect is called again.
func (c *Client) Disconnect() error {
	if c.state != stateConnected {
		return ErrNotConnected
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	c.writer = nil
	c.table = nil
	c.state = stateDisconnected
	if err != nil {
		return &IOError{Op: "close", Err: err}
	}
	return nil
}

// Version reports the protocol version and server version string
// negotiated by the last successful Connect. ok is false when not
// connected.
func (c *Client) Version() (version uint16, serverVersion string, ok bool) {
	if c.state != stateConnected {
		return 0, "", false
	}
	return uint16(c.protocolVersion), c.serverVersion, true
}

func (c *Client) roundTrip(p *packet.Packet) (*packet.Packet, error) {
	if c.state != stateConnected {
		return nil, ErrNotConnected
	}
	if err := p.Write(c.writer); err != nil {
		return nil, &IOError{Op: "write", Err: err}
	}
	if err := c.writer.Flush(); err != nil {
		return nil, &IOError{Op: "flush", Err: err}
	}
	resp, err := packet.Read(c.reader)
	if err != nil {
		return nil, classifyReadErr("read", err)
	}
	return resp, nil
}

// classifyReadErr distinguishes a packet.FrameError (the daemon sent a
// malformed frame: bad zlib, unknown tag type, truncated body) from a plain
// socket failure, so callers can tell "the daemon sent garbage" apart from
// "the connection died" via errors.As.
func classifyReadErr(op string, err error) error {
	var frameErr *packet.FrameError
	if errors.As(err, &frameErr) {
		return &DecodingError{Op: op, Err: err}
	}
	return &IOError{Op: op, Err: err}
}

// GetServerStatus queries the daemon's current statistics and connection
// state.
func (c *Client) GetServerStatus() (*ServerStatus, error) {
	req := packet.New(codes.OpStatReq)
	req.Tags = append(req.Tags, tag.NewUint8(codes.TagDetailLevel, codes.DetailCmd))

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	m, _ := linearDecode(resp, []uint8{codes.OpStats}, []field{
		scalarField(codes.TagStatsULSpeed, "ul_speed"),
		scalarField(codes.TagStatsDLSpeed, "dl_speed"),
		scalarField(codes.TagStatsULSpeedLimit, "ul_speed_limit"),
		scalarField(codes.TagStatsDLSpeedLimit, "dl_speed_limit"),
		scalarField(codes.TagStatsULQueueLen, "ul_queue_len"),
		scalarField(codes.TagStatsTotalSrcCount, "total_src_count"),
		scalarField(codes.TagStatsED2KUsers, "ed2k_users"),
		scalarField(codes.TagStatsKadUsers, "kad_users"),
		scalarField(codes.TagStatsED2KFiles, "ed2k_files"),
		scalarField(codes.TagStatsKadFiles, "kad_files"),
		scalarField(codes.TagStatsKadFirewalledUDP, "kad_firewalled_udp"),
		scalarField(codes.TagStatsKadIndexedSources, "kad_indexed_sources"),
		scalarField(codes.TagStatsKadIndexedKeywords, "kad_indexed_keywords"),
		scalarField(codes.TagStatsKadIndexedNotes, "kad_indexed_notes"),
		scalarField(codes.TagStatsKadIndexedLoad, "kad_indexed_load"),
		scalarField(codes.TagStatsKadIPAddress, "kad_ip_address"),
		scalarField(codes.TagStatsBuddyStatus, "buddy_status"),
		scalarField(codes.TagStatsBuddyIP, "buddy_ip"),
		scalarField(codes.TagStatsBuddyPort, "buddy_port"),
		scalarField(codes.TagConnState, "connstate"),
	})

	status := &ServerStatus{
		ULSpeed:            asUint32(m, "ul_speed"),
		DLSpeed:            asUint32(m, "dl_speed"),
		ULSpeedLimit:       asUint32(m, "ul_speed_limit"),
		DLSpeedLimit:       asUint32(m, "dl_speed_limit"),
		ULQueueLen:         asUint32(m, "ul_queue_len"),
		TotalSrcCount:      asUint32(m, "total_src_count"),
		ED2KUsers:          asUint32(m, "ed2k_users"),
		KadUsers:           asUint32(m, "kad_users"),
		ED2KFiles:          asUint32(m, "ed2k_files"),
		KadFiles:           asUint32(m, "kad_files"),
		KadFirewalledUDP:   asUint32(m, "kad_firewalled_udp"),
		KadIndexedSources:  asUint32(m, "kad_indexed_sources"),
		KadIndexedKeywords: asUint32(m, "kad_indexed_keywords"),
		KadIndexedNotes:    asUint32(m, "kad_indexed_notes"),
		KadIndexedLoad:     asUint32(m, "kad_indexed_load"),
		KadIPAddress:       asUint32(m, "kad_ip_address"),
		BuddyStatus:        asUint32(m, "buddy_status"),
		BuddyIP:            asUint32(m, "buddy_ip"),
		BuddyPort:          asUint32(m, "buddy_port"),
		ConnState:          asUint32(m, "connstate"),
	}

	if connState := resp.Tag(codes.TagConnState); connState != nil {
		if clientID := connState.Child(codes.TagClientID); clientID != nil {
			status.ClientID = valueAsUint32(clientID.Value)
		}
	}

	return status, nil
}

// SearchMethod selects where search_start looks for results.
type SearchMethod uint8

const (
	SearchLocal  SearchMethod = 0
	SearchGlobal SearchMethod = 1
	SearchKad    SearchMethod = 2
)

// SearchParams carries the optional filters for SearchStart.
type SearchParams struct {
	Query        string
	Method       SearchMethod
	MinSize      *uint32
	MaxSize      *uint32
	FileType     string
	Extension    string
	MinAvailable *uint32
}

// SearchStart asks the daemon to begin a search. The request always sets
// UTF8_NUMBERS, matching the reference client's behavior for this opcode.
func (c *Client) SearchStart(p SearchParams) (*SearchStartResult, error) {
	req := packet.New(codes.OpSearchStart)
	req.SetFlag(codes.FlagUTF8Numbers)

	searchTag := tag.NewUint8(codes.TagSearchType, uint8(p.Method))
	searchTag.Children = append(searchTag.Children, tag.NewString(codes.TagSearchName, p.Query))
	if p.MinSize != nil {
		searchTag.Children = append(searchTag.Children, tag.NewUint32(codes.TagSearchMinSize, *p.MinSize))
	}
	if p.MaxSize != nil {
		searchTag.Children = append(searchTag.Children, tag.NewUint32(codes.TagSearchMaxSize, *p.MaxSize))
	}
	searchTag.Children = append(searchTag.Children, tag.NewString(codes.TagSearchFileType, p.FileType))
	if p.Extension != "" {
		searchTag.Children = append(searchTag.Children, tag.NewString(codes.TagSearchExtension, p.Extension))
	}
	if p.MinAvailable != nil {
		searchTag.Children = append(searchTag.Children, tag.NewUint32(codes.TagSearchAvailability, *p.MinAvailable))
	}
	req.Tags = append(req.Tags, searchTag)

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	m, _ := linearDecode(resp, []uint8{codes.OpFailed}, []field{
		scalarField(codes.TagString, "message"),
	})
	return &SearchStartResult{OK: resp.Opcode != codes.OpFailed, Message: asString(m, "message")}, nil
}

// GetSearchProgress returns the current search completion percentage,
// 0..=100. Always 0 for Kad searches.
func (c *Client) GetSearchProgress() (uint8, error) {
	resp, err := c.roundTrip(packet.New(codes.OpSearchProgress))
	if err != nil {
		return 0, err
	}
	statusTag := resp.Tag(codes.TagSearchStatus)
	if statusTag == nil {
		return 0, nil
	}
	v, _ := statusTag.Uint8()
	return v, nil
}

// GetSearchResults fetches the results of the last search_start. When
// update is true, the request carries DETAIL_LEVEL=INC_UPDATE so the
// daemon only returns changed fields; every result hash is still present
// as a key.
func (c *Client) GetSearchResults(update bool) (map[string]SearchResult, error) {
	req := packet.New(codes.OpSearchResults)
	if update {
		req.Tags = append(req.Tags, tag.NewUint8(codes.TagDetailLevel, codes.DetailIncUpdate))
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	items, _ := listDecode(resp, []uint8{codes.OpSearchResults}, codes.TagSearchfile, []field{
		scalarField(codes.TagPartfileSourceCount, "src_count"),
		scalarField(codes.TagPartfileSourceCountXfer, "src_count_xfer"),
		scalarField(codes.TagPartfileName, "name"),
		scalarField(codes.TagPartfileSizeFull, "size"),
	})

	out := make(map[string]SearchResult, len(items))
	for hash, m := range items {
		out[hash] = SearchResult{
			Name:         asString(m, "name"),
			Size:         asUint64(m, "size"),
			SrcCount:     asUint32(m, "src_count"),
			SrcCountXfer: asUint32(m, "src_count_xfer"),
		}
	}
	return out, nil
}

// DownloadSearchResults starts downloading the given search-result
// hashes. The daemon does not acknowledge this request, so the result is
// always true once the round trip completes without error.
func (c *Client) DownloadSearchResults(hashes []string, category uint8) (bool, error) {
	req := packet.New(codes.OpDownloadSearchResult)
	for _, h := range hashes {
		t, err := tag.NewHash16(codes.TagSearchfile, h)
		if err != nil {
			return false, err
		}
		t.Children = append(t.Children, tag.NewUint8(codes.TagCategory, category))
		req.Tags = append(req.Tags, t)
	}
	if _, err := c.roundTrip(req); err != nil {
		return false, err
	}
	return true, nil
}

// DownloadEd2kLinks adds the given ed2k links to the download queue,
// returning true iff the daemon's response opcode is NOOP.
func (c *Client) DownloadEd2kLinks(links []string, category uint8) (bool, error) {
	req := packet.New(codes.OpAddLink)
	for _, l := range links {
		t := tag.NewString(codes.TagString, l)
		t.Children = append(t.Children, tag.NewUint8(codes.TagCategory, category))
		req.Tags = append(req.Tags, t)
	}
	resp, err := c.roundTrip(req)
	if err != nil {
		return false, err
	}
	return resp.Opcode == codes.OpNoop, nil
}

// DownloadDetail selects the level of detail returned by GetDownloadList.
type DownloadDetail int

const (
	DownloadListBasic  DownloadDetail = iota // OP_GET_DLOAD_QUEUE
	DownloadListDetail                       // OP_GET_DLOAD_QUEUE_DETAIL
)

// GetDownloadList fetches the current download queue. detail selects
// between the summary and detailed opcodes; update (ignored when detail
// is DownloadListDetail) requests incremental-update semantics.
func (c *Client) GetDownloadList(detail DownloadDetail, update bool) (map[string]Partfile, error) {
	var req *packet.Packet
	if detail == DownloadListDetail {
		req = packet.New(codes.OpGetDloadQueueDetail)
		req.Tags = append(req.Tags, tag.NewUint8(codes.TagDetailLevel, codes.DetailFull))
	} else {
		req = packet.New(codes.OpGetDloadQueue)
		if update {
			req.Tags = append(req.Tags, tag.NewUint8(codes.TagDetailLevel, codes.DetailIncUpdate))
		}
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	fields := []field{
		scalarField(codes.TagPartfileStatus, "status"),
		scalarField(codes.TagPartfileSourceCount, "src_count"),
		scalarField(codes.TagPartfileSourceCountNotCurrent, "src_count_not_current"),
		scalarField(codes.TagPartfileSourceCountXfer, "src_count_xfer"),
		scalarField(codes.TagPartfileSourceCountA4AF, "src_count_a4af"),
		scalarField(codes.TagPartfileName, "name"),
		scalarField(codes.TagPartfileSizeXfer, "size_xfer"),
		scalarField(codes.TagPartfileSizeDone, "size_done"),
		scalarField(codes.TagPartfileSizeFull, "size"),
		scalarField(codes.TagPartfileSpeed, "speed"),
		scalarField(codes.TagPartfilePrio, "prio"),
		scalarField(codes.TagPartfileCat, "cat"),
		scalarField(codes.TagPartfileLastSeenComp, "last_seen_comp"),
		scalarField(codes.TagPartfileLastRecv, "last_recv"),
		scalarField(codes.TagPartfilePartmetID, "partmetid"),
		scalarField(codes.TagPartfileED2KLink, "ed2k_link"),
		listField(codes.TagPartfileSourceNames, "source_names", codes.TagPartfileSourceNames),
	}
	if c.table.Extended() {
		fields = append(fields,
			scalarField(codes.TagPartfileLostCorruption, "lost_corruption"),
			scalarField(codes.TagPartfileGainedCompression, "gained_compression"),
			scalarField(codes.TagPartfileSavedICH, "saved_ich"),
			scalarField(codes.TagPartfileStopped, "stopped"),
			scalarField(codes.TagPartfileDownloadActive, "download_active"),
		)
	}

	items, _ := listDecode(resp, []uint8{codes.OpDloadQueue}, codes.TagPartfile, fields)

	out := make(map[string]Partfile, len(items))
	for hash, m := range items {
		out[hash] = Partfile{
			Status:             asUint32(m, "status"),
			SrcCount:           asUint32(m, "src_count"),
			SrcCountNotCurrent: asUint32(m, "src_count_not_current"),
			SrcCountXfer:       asUint32(m, "src_count_xfer"),
			SrcCountA4AF:       asUint32(m, "src_count_a4af"),
			Name:               asString(m, "name"),
			SizeXfer:           asUint64(m, "size_xfer"),
			SizeDone:           asUint64(m, "size_done"),
			Size:               asUint64(m, "size"),
			Speed:              asUint32(m, "speed"),
			Prio:               asUint32(m, "prio"),
			Cat:                asUint32(m, "cat"),
			LastSeenComp:       asUint32(m, "last_seen_comp"),
			LastRecv:           asUint32(m, "last_recv"),
			PartMetID:          asUint32(m, "partmetid"),
			ED2KLink:           asString(m, "ed2k_link"),
			SourceNames:        asStringSlice(m, "source_names"),
			LostCorruption:     asUint64(m, "lost_corruption"),
			GainedCompression:  asUint64(m, "gained_compression"),
			SavedICH:           asUint64(m, "saved_ich"),
			Stopped:            asUint32(m, "stopped") != 0,
			DownloadActive:     asUint32(m, "download_active") != 0,
		}
	}
	return out, nil
}

// partfileCmd sends one packet carrying one TAG_PARTFILE child per hash,
// optionally with extraArg attached to every such child, and reports
// success as the response opcode being NOOP.
func (c *Client) partfileCmd(hashes []string, opcode uint8, extraArg *tag.Tag) (bool, error) {
	req := packet.New(opcode)
	for _, h := range hashes {
		t, err := tag.NewHash16(codes.TagPartfile, h)
		if err != nil {
			return false, err
		}
		if extraArg != nil {
			t.Children = append(t.Children, extraArg)
		}
		req.Tags = append(req.Tags, t)
	}
	resp, err := c.roundTrip(req)
	if err != nil {
		return false, err
	}
	return resp.Opcode == codes.OpNoop, nil
}

func (c *Client) PartfileRemoveNoNeed(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileRemoveNoNeeded, nil)
}

func (c *Client) PartfileRemoveFullQueue(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileRemoveFullQueue, nil)
}

func (c *Client) PartfileRemoveHighQueue(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileRemoveHighQueue, nil)
}

func (c *Client) PartfileCleanupSources(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileCleanupSources, nil)
}

func (c *Client) PartfileSwapA4AFThis(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileSwapA4AFThis, nil)
}

func (c *Client) PartfileSwapA4AFThisAuto(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileSwapA4AFThisAuto, nil)
}

func (c *Client) PartfileSwapA4AFOthers(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileSwapA4AFOthers, nil)
}

func (c *Client) PartfilePause(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfilePause, nil)
}

func (c *Client) PartfileResume(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileResume, nil)
}

func (c *Client) PartfileStop(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileStop, nil)
}

func (c *Client) PartfileDelete(hashes []string) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileDelete, nil)
}

// PartfileSetPrio sets the download priority of the given partfiles. prio
// should be one of the codes.Prio* constants.
func (c *Client) PartfileSetPrio(hashes []string, prio uint8) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfilePrioSet, tag.NewUint8(codes.TagPartfilePrio, prio))
}

// PartfileSetCat sets the category of the given partfiles.
func (c *Client) PartfileSetCat(hashes []string, cat uint8) (bool, error) {
	return c.partfileCmd(hashes, codes.OpPartfileSetCat, tag.NewUint8(codes.TagPartfileCat, cat))
}
