package protocol

// netHandlers is the static dispatch table from command name to
// handler. Names not present here are logged for authenticated clients
// and treated as a framing violation for everyone else.
var netHandlers = map[string]func(*Conn, []string){
	"HI":       (*Conn).cmdHI,
	"ID":       (*Conn).cmdID,
	"CH":       (*Conn).cmdCH,
	"askchaa":  (*Conn).cmdAskCounts,
	"askchar2": (*Conn).cmdAskChars,
	"AN":       (*Conn).cmdNextPage,
	"AE":       (*Conn).cmdEvidencePage,
	"AM":       (*Conn).cmdMusicPage,
	"RC":       (*Conn).cmdCharList,
	"RM":       (*Conn).cmdMusicList,
	"RD":       (*Conn).cmdDone,
	"CC":       (*Conn).cmdChooseChar,
	"MS":       (*Conn).cmdIC,
	"CT":       (*Conn).cmdOOC,
	"MC":       (*Conn).cmdMusic,
	"RT":       (*Conn).cmdWTCE,
	"SETCASE":  (*Conn).cmdSetCase,
	"CASEA":    (*Conn).cmdCaseAnnounce,
	"HP":       (*Conn).cmdPenalty,
	"PE":       (*Conn).cmdAddEvidence,
	"DE":       (*Conn).cmdDelEvidence,
	"EE":       (*Conn).cmdEditEvidence,
	"ZZ":       (*Conn).cmdModCall,
	"opKICK":   (*Conn).cmdOpKick,
	"opBAN":    (*Conn).cmdOpBan,
}
