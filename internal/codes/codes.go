// Package codes holds the version-parameterized constant tables for the EC
// wire protocol: opcodes, tag IDs, flag bits, tag value types, detail
// levels and partfile status/priority codes.
//
// The protocol grew a handful of opcodes and tags between 0x0200 and
// 0x0203. Rather than scatter "if version >= 0x0203" checks across the
// client facade, callers obtain a *Table for the version negotiated during
// the handshake and ask it what the active wire surface looks like.
package codes

import "fmt"

// Version identifies a wire protocol revision known to this client.
type Version uint16

const (
	V0200 Version = 0x0200
	V0203 Version = 0x0203
)

// Known lists the versions the handshake engine tries, in preference order.
var Known = []Version{V0200, V0203}

// VersionError reports that a Table was requested for an unsupported
// protocol version. A well-formed handshake loop only ever asks for
// versions out of Known, so seeing this indicates a programmer error.
type VersionError struct {
	Version Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("codes: unknown protocol version: 0x%04x", uint16(e.Version))
}

// Table is the active code table for one negotiated protocol version.
type Table struct {
	Version Version
}

// NewTable builds the code table for version v, failing if v is not one of
// Known.
func NewTable(v Version) (*Table, error) {
	for _, k := range Known {
		if k == v {
			return &Table{Version: v}, nil
		}
	}
	return nil, &VersionError{Version: v}
}

// Extended reports whether this table's version carries the 0x0203 additions
// (salted auth opcodes, stats/partfile/client/directories tags).
func (t *Table) Extended() bool {
	return t.Version >= V0203
}

// Packet flags (Packet.flags / Packet.accept_flags bit set).
const (
	FlagZlib        = 0x01
	FlagUTF8Numbers = 0x02
	FlagHasID       = 0x04
	FlagAccepts     = 0x10
	FlagBlank       = 0x20
	FlagExtension   = 0x80
)

// Tag value types (the tag header's type byte).
const (
	TagTypeUnknown = 0x00
	TagTypeCustom  = 0x01
	TagTypeUint8   = 0x02
	TagTypeUint16  = 0x03
	TagTypeUint32  = 0x04
	TagTypeUint64  = 0x05
	TagTypeString  = 0x06
	TagTypeDouble  = 0x07
	TagTypeIPv4    = 0x08
	TagTypeHash16  = 0x09
)

// Detail levels, carried in TAG_DETAIL_LEVEL.
const (
	DetailCmd       = 0x00
	DetailWeb       = 0x01
	DetailFull      = 0x02
	DetailUpdate    = 0x03
	DetailIncUpdate = 0x04
)

// Partfile statuses, carried in TAG_PARTFILE_STATUS.
const (
	PSReady          = 0
	PSEmpty          = 1
	PSWaitingForHash = 2
	PSHashing        = 3
	PSError          = 4
	PSInsufficient   = 5
	PSUnknown        = 6
	PSPaused         = 7
	PSCompleting     = 8
	PSComplete       = 9
	PSAllocating     = 10
)

// Partfile priorities, carried in TAG_PARTFILE_PRIO and sent as the
// argument of partfile_set_prio.
const (
	PrioVeryLow    = 4
	PrioLow        = 0
	PrioNormal     = 1
	PrioHigh       = 2
	PrioVeryHigh   = 3
	PrioAuto       = 5
	PrioPowerShare = 6
)

// Opcodes. Present across both known versions unless noted.
const (
	OpNoop                     = 0x01
	OpAuthReq                  = 0x02
	OpAuthFail                 = 0x03
	OpAuthOK                   = 0x04
	OpFailed                   = 0x05
	OpStrings                  = 0x06
	OpMiscData                 = 0x07
	OpShutdown                 = 0x08
	OpAddLink                  = 0x09
	OpStatReq                  = 0x0A
	OpGetConnState             = 0x0B
	OpStats                    = 0x0C
	OpGetDloadQueue            = 0x0D
	OpGetUloadQueue            = 0x0E
	OpGetWaitQueue             = 0x0F
	OpGetSharedFiles           = 0x10
	OpSharedSetPrio            = 0x11
	OpPartfileRemoveNoNeeded   = 0x12
	OpPartfileRemoveFullQueue  = 0x13
	OpPartfileRemoveHighQueue  = 0x14
	OpPartfileCleanupSources   = 0x15
	OpPartfileSwapA4AFThis     = 0x16
	OpPartfileSwapA4AFThisAuto = 0x17
	OpPartfileSwapA4AFOthers   = 0x18
	OpPartfilePause            = 0x19
	OpPartfileResume           = 0x1A
	OpPartfileStop             = 0x1B
	OpPartfilePrioSet          = 0x1C
	OpPartfileDelete           = 0x1D
	OpPartfileSetCat           = 0x1E
	OpDloadQueue               = 0x1F
	OpUloadQueue               = 0x20
	OpWaitQueue                = 0x21
	OpSharedFiles              = 0x22
	OpSharedFilesReload        = 0x23
	OpSharedFilesAddDirectory  = 0x24
	OpRenameFile               = 0x25
	OpSearchStart              = 0x26
	OpSearchStop               = 0x27
	OpSearchResults            = 0x28
	OpSearchProgress           = 0x29
	OpDownloadSearchResult     = 0x2A
	OpIPFilterReload           = 0x2B
	OpGetServerList            = 0x2C
	OpServerList               = 0x2D
	OpServerDisconnect         = 0x2E
	OpServerConnect            = 0x2F
	OpServerRemove             = 0x30
	OpServerAdd                = 0x31
	OpServerUpdateFromURL      = 0x32
	OpAddLogLine               = 0x33
	OpAddDebugLogLine          = 0x34
	OpGetLog                   = 0x35
	OpGetDebugLog              = 0x36
	OpGetServerInfo            = 0x37
	OpLog                      = 0x38
	OpDebugLog                 = 0x39
	OpServerInfo               = 0x3A
	OpResetLog                 = 0x3B
	OpResetDebugLog            = 0x3C
	OpClearServerInfo          = 0x3D
	OpGetLastLogEntry          = 0x3E
	OpGetPreferences           = 0x3F
	OpSetPreferences           = 0x40
	OpCreateCategory           = 0x41
	OpUpdateCategory           = 0x42
	OpDeleteCategory           = 0x43
	OpGetStatsGraphs           = 0x44
	OpStatsGraphs              = 0x45
	OpGetStatsTree             = 0x46
	OpStatsTree                = 0x47
	OpKadStart                 = 0x48
	OpKadStop                  = 0x49
	OpConnect                  = 0x4A
	OpDisconnect               = 0x4B
	OpGetDloadQueueDetail      = 0x4C
	OpKadUpdateFromURL         = 0x4D
	OpKadBootstrapFromIP       = 0x4E

	// Added in 0x0203.
	OpAuthSalt   = 0x4F
	OpAuthPasswd = 0x50
)

// Tags. Present across both known versions unless noted.
const (
	TagString          = 0x0000
	TagPasswdHash      = 0x0001
	TagProtocolVersion = 0x0002
	TagVersionID       = 0x0003
	TagDetailLevel     = 0x0004
	TagConnState       = 0x0005
	TagED2KID          = 0x0006
	TagLogToStatus     = 0x0007
	TagBootstrapIP     = 0x0008
	TagBootstrapPort   = 0x0009
	TagClientID        = 0x000A

	// Added in 0x0203.
	TagPasswdSalt = 0x000B

	TagClientName    = 0x0100
	TagClientVersion = 0x0101
	TagClientMod     = 0x0102

	TagStatsULSpeed       = 0x0200
	TagStatsDLSpeed       = 0x0201
	TagStatsULSpeedLimit  = 0x0202
	TagStatsDLSpeedLimit  = 0x0203
	TagStatsUpOverhead    = 0x0204
	TagStatsDownOverhead  = 0x0205
	TagStatsTotalSrcCount = 0x0206
	TagStatsBannedCount   = 0x0207
	TagStatsULQueueLen    = 0x0208
	TagStatsED2KUsers     = 0x0209
	TagStatsKadUsers      = 0x020A
	TagStatsED2KFiles     = 0x020B
	TagStatsKadFiles      = 0x020C

	// Added in 0x0203.
	TagStatsLoggerMessage      = 0x020D
	TagStatsKadFirewalledUDP   = 0x020E
	TagStatsKadIndexedSources  = 0x020F
	TagStatsKadIndexedKeywords = 0x0210
	TagStatsKadIndexedNotes    = 0x0211
	TagStatsKadIndexedLoad     = 0x0212
	TagStatsKadIPAddress       = 0x0213
	TagStatsBuddyStatus        = 0x0214
	TagStatsBuddyIP            = 0x0215
	TagStatsBuddyPort          = 0x0216

	TagPartfile                      = 0x0300
	TagPartfileName                  = 0x0301
	TagPartfilePartmetID             = 0x0302
	TagPartfileSizeFull              = 0x0303
	TagPartfileSizeXfer              = 0x0304
	TagPartfileSizeXferUp            = 0x0305
	TagPartfileSizeDone              = 0x0306
	TagPartfileSpeed                 = 0x0307
	TagPartfileStatus                = 0x0308
	TagPartfilePrio                  = 0x0309
	TagPartfileSourceCount           = 0x030A
	TagPartfileSourceCountA4AF       = 0x030B
	TagPartfileSourceCountNotCurrent = 0x030C
	TagPartfileSourceCountXfer       = 0x030D
	TagPartfileED2KLink              = 0x030E
	TagPartfileCat                   = 0x030F
	TagPartfileLastRecv              = 0x0310
	TagPartfileLastSeenComp          = 0x0311
	TagPartfilePartStatus            = 0x0312
	TagPartfileGapStatus             = 0x0313
	TagPartfileReqStatus             = 0x0314
	TagPartfileSourceNames           = 0x0315
	TagPartfileComments              = 0x0316

	// Added in 0x0203.
	TagPartfileStopped            = 0x0317
	TagPartfileDownloadActive     = 0x0318
	TagPartfileLostCorruption     = 0x0319
	TagPartfileGainedCompression  = 0x031A
	TagPartfileSavedICH           = 0x031B

	TagKnownfile             = 0x0400
	TagKnownfileXferred      = 0x0401
	TagKnownfileXferredAll   = 0x0402
	TagKnownfileReqCount     = 0x0403
	TagKnownfileReqCountAll  = 0x0404
	TagKnownfileAcceptCount  = 0x0405
	TagKnownfileAcceptAll    = 0x0406
	TagKnownfileAICHMaster   = 0x0407

	// Added in 0x0203.
	TagKnownfileFilename = 0x0408

	TagServer         = 0x0500
	TagServerName     = 0x0501
	TagServerDesc     = 0x0502
	TagServerAddress  = 0x0503
	TagServerPing     = 0x0504
	TagServerUsers    = 0x0505
	TagServerUsersMax = 0x0506
	TagServerFiles    = 0x0507
	TagServerPrio     = 0x0508
	TagServerFailed   = 0x0509
	TagServerStatic   = 0x050A
	TagServerVersion  = 0x050B

	TagClient                  = 0x0600
	TagClientSoftware          = 0x0601
	TagClientScore             = 0x0602
	TagClientHash              = 0x0603
	TagClientFriend            = 0x0604
	TagClientWaitTime          = 0x0605
	TagClientXferTime          = 0x0606
	TagClientQueueTime         = 0x0607
	TagClientLastTime          = 0x0608
	TagClientUploadSession     = 0x0609
	TagClientUploadTotal       = 0x060A
	TagClientDownloadTotal     = 0x060B
	TagClientState             = 0x060C
	TagClientUpSpeed           = 0x060D
	TagClientDownSpeed         = 0x060E
	TagClientFrom              = 0x060F
	TagClientUserIP            = 0x0610
	TagClientUserPort          = 0x0611
	TagClientServerIP          = 0x0612
	TagClientServerPort        = 0x0613
	TagClientServerName        = 0x0614
	TagClientSoftVerStr        = 0x0615
	TagClientWaitingPosition   = 0x0616

	// Added in 0x0203.
	TagClientIdentState       = 0x0617
	TagClientObfuscatedConn   = 0x0618
	TagClientRating           = 0x0619
	TagClientRemoteQueueRank  = 0x061A
	TagClientAskedCount       = 0x061B

	TagSearchfile        = 0x0700
	TagSearchType        = 0x0701
	TagSearchName        = 0x0702
	TagSearchMinSize     = 0x0703
	TagSearchMaxSize     = 0x0704
	TagSearchFileType    = 0x0705
	TagSearchExtension   = 0x0706
	TagSearchAvailability = 0x0707
	TagSearchStatus      = 0x0708

	TagCategory       = 0x1101
	TagCategoryTitle  = 0x1102
	TagCategoryPath   = 0x1103
	TagCategoryComment = 0x1104
	TagCategoryColor  = 0x1105
	TagCategoryPrio   = 0x1106
)
