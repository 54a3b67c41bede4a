package amulec

// ServerStatus is the projection of an OP_STATS response.
type ServerStatus struct {
	ULSpeed            uint32
	DLSpeed            uint32
	ULSpeedLimit       uint32
	DLSpeedLimit       uint32
	ULQueueLen         uint32
	TotalSrcCount      uint32
	ED2KUsers          uint32
	KadUsers           uint32
	ED2KFiles          uint32
	KadFiles           uint32
	KadFirewalledUDP   uint32
	KadIndexedSources  uint32
	KadIndexedKeywords uint32
	KadIndexedNotes    uint32
	KadIndexedLoad     uint32
	KadIPAddress       uint32
	BuddyStatus        uint32
	BuddyIP            uint32
	BuddyPort          uint32
	ConnState          uint32
	ClientID           uint32
}

// SearchResult is the projection of one entry of an OP_SEARCH_RESULTS
// response's SEARCHFILE list.
type SearchResult struct {
	Name         string
	Size         uint64
	SrcCount     uint32
	SrcCountXfer uint32
}

// Partfile is the projection of one entry of an OP_DLOAD_QUEUE response's
// partfile list. Fields added by protocol 0x0203
// (LostCorruption, GainedCompression, SavedICH, Stopped, DownloadActive)
// are zero-valued when the negotiated protocol predates them.
type Partfile struct {
	Status               uint32
	SrcCount             uint32
	SrcCountNotCurrent   uint32
	SrcCountXfer         uint32
	SrcCountA4AF         uint32
	Name                 string
	SizeXfer             uint64
	SizeDone             uint64
	Size                 uint64
	Speed                uint32
	Prio                 uint32
	Cat                  uint32
	LastSeenComp         uint32
	LastRecv             uint32
	PartMetID            uint32
	ED2KLink             string
	SourceNames          []string
	LostCorruption       uint64
	GainedCompression    uint64
	SavedICH             uint64
	Stopped              bool
	DownloadActive       bool
}

// SearchStartResult is the response to search_start: ok reports whether
// the daemon accepted the search, message carries its reason when it
// didn't.
type SearchStartResult struct {
	OK      bool
	Message string
}
