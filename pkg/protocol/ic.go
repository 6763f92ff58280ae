package protocol

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// The IC message grew fields across client generations, so an incoming
// MS command is matched against the known shapes oldest-first and the
// missing fields take their legacy defaults.
var (
	icShapeClassic = []ArgType{
		ArgStr,        // msg type
		ArgStrOrEmpty, // preanim
		ArgStr,        // character folder
		ArgStr,        // animation
		ArgStrOrEmpty, // text
		ArgStr,        // position
		ArgStr,        // sound effect
		ArgInt,        // animation type
		ArgInt,        // character id
		ArgInt,        // sfx delay
		ArgIntOrStr,   // shout button
		ArgInt,        // evidence
		ArgInt,        // flip
		ArgInt,        // realization
		ArgInt,        // text color
	}
	icShapePairs = append(append([]ArgType{}, icShapeClassic...),
		ArgStrOrEmpty, // showname
		ArgInt,        // paired character id
		ArgInt,        // pair offset
		ArgInt,        // non-interrupting preanim
	)
	icShapeEffects = append(append([]ArgType{}, icShapeClassic...),
		ArgStrOrEmpty, // showname
		ArgStr,        // paired character id, optionally "id^order"
		ArgStr,        // pair offset
		ArgInt,        // non-interrupting preanim
		ArgStr,        // looping sfx
		ArgInt,        // screenshake
		ArgStr,        // shake frames
		ArgStr,        // realization frames
		ArgStr,        // sfx frames
		ArgInt,        // additive
		ArgStr,        // effect
	)
)

// Positions of the mutable fields inside a broadcast MS argument list.
const (
	icFieldText   = 4
	icFieldCharID = 8
)

// icMessage is a decoded MS command with defaults filled in for fields
// the client's dialect does not carry.
type icMessage struct {
	msgType  string
	pre      string
	folder   string
	anim     string
	text     string
	pos      string
	sfx      string
	animType int
	charID   int
	sfxDelay int
	button   string
	evidence int
	flip     int
	ding     int
	color    int

	showname   string
	charidPair int
	pairOrder  string
	offsetPair string
	nonintPre  int

	sfxLooping        string
	screenshake       int
	framesShake       string
	framesRealization string
	framesSfx         string
	additive          int
	effect            string
}

// decodeIC matches the argument list against the dialect shapes,
// oldest first.
func (c *Conn) decodeIC(args []string) (*icMessage, bool) {
	m := &icMessage{
		charidPair: -1,
		offsetPair: "0",
		sfxLooping: "0",
	}
	switch {
	case c.validate(args, true, icShapeClassic...):
	case c.validate(args, true, icShapePairs...):
		m.showname = args[15]
		m.charidPair = atoi(args[16])
		m.offsetPair = args[17]
		m.nonintPre = atoi(args[18])
	case c.validate(args, true, icShapeEffects...):
		m.showname = args[15]
		pair := strings.Split(args[16], "^")
		if id, err := strconv.Atoi(pair[0]); err == nil {
			m.charidPair = id
		}
		if len(pair) > 1 {
			m.pairOrder = pair[1]
		}
		m.offsetPair = args[17]
		m.nonintPre = atoi(args[18])
		m.sfxLooping = args[19]
		m.screenshake = atoi(args[20])
		m.framesShake = args[21]
		m.framesRealization = args[22]
		m.framesSfx = args[23]
		m.additive = atoi(args[24])
		m.effect = args[25]
	default:
		return nil, false
	}
	m.msgType = args[0]
	m.pre = args[1]
	m.folder = args[2]
	m.anim = args[3]
	m.text = args[4]
	m.pos = args[5]
	m.sfx = args[6]
	m.animType = atoi(args[7])
	m.charID = atoi(args[8])
	m.sfxDelay = atoi(args[9])
	m.button = args[10]
	m.evidence = atoi(args[11])
	m.flip = atoi(args[12])
	m.ding = atoi(args[13])
	m.color = atoi(args[14])
	return m, true
}

// lowEffortChars matches the decoration characters clients use to pad
// out otherwise empty posts.
var lowEffortChars = regexp.MustCompile("[{}\\\\`|(~)]")

func isLowEffort(text string) bool {
	stripped := lowEffortChars.ReplaceAllString(text, "")
	stripped = strings.ReplaceAll(stripped, " ", "")
	return utf8.RuneCountInString(stripped) < 3 &&
		!strings.HasPrefix(text, "<") && !strings.HasPrefix(text, ">")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// cmdIC handles an in-character message end to end: dialect decoding,
// room policy, the embedded testimony sub-language, content filters,
// pairing resolution and finally the broadcast.
func (c *Conn) cmdIC(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() {
		return
	}
	if cl.Muted {
		cl.SendOOC("You are muted by a moderator.")
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}

	area.Lock()
	defer area.Unlock()

	if area.CannotICInteract(cl) {
		cl.SendOOC("This is a locked area - ask the CM to speak.")
		return
	}
	if !area.CanSendMessage() {
		return
	}
	msg, ok := c.decodeIC(args)
	if !ok {
		return
	}

	additive := 0
	if msg.additive == 1 && area.ClientCanAdditive(cl) {
		additive = 1
	}

	if len(msg.showname) > 0 && !area.ShownameAllowed {
		cl.SendOOC("Shownames are not allowed in this area!")
		return
	}

	if area.IsIniswap(cl, msg.folder) {
		cl.SendOOC("Iniswap is blocked in this area!")
		return
	}
	if len(cl.Charcurse) > 0 && msg.folder != cl.CharName() {
		cl.SendOOC("You may not iniswap while you are charcursed!")
		return
	}

	if !area.BlankpostingAllowed {
		if strings.TrimSpace(msg.text) == "" {
			cl.SendOOC("Blankposting is forbidden in this area!")
			return
		}
		if isLowEffort(msg.text) {
			cl.SendOOC("While that is not a blankpost, it is still pretty spammy. Try forming sentences.")
			return
		}
	}

	// CM broadcast prefixes: /a routes the message to one owned area,
	// /s to every owned area.
	var targetAreas []int
	if strings.HasPrefix(msg.text, "/a ") {
		part := strings.Split(msg.text, " ")
		aid, err := strconv.Atoi(part[1])
		target := g.Areas.Get(aid)
		if err != nil || target == nil {
			cl.SendOOC("That does not look like a valid area ID!")
			return
		}
		if !target.IsOwner(cl) {
			cl.SendOOC("You don't own " + target.Name + "!")
			return
		}
		targetAreas = append(targetAreas, aid)
		msg.text = strings.Join(part[2:], " ")
	} else if strings.HasPrefix(msg.text, "/s ") {
		for _, a := range g.Areas.All() {
			if a.IsOwner(cl) {
				targetAreas = append(targetAreas, a.ID)
			}
		}
		if len(targetAreas) == 0 {
			cl.SendOOC("You don't own any areas!")
			return
		}
		msg.text = msg.text[len("/s "):]
	}

	// Testimony sub-language.
	if strings.HasPrefix(msg.text, "/testify ") {
		title := msg.text[len("/testify "):]
		if err := area.StartTestimony(cl, title); err != nil {
			cl.SendOOC(err.Error())
			return
		}
		msg.text = "~~-- " + title + " --"
		msg.color = 3
	} else if strings.TrimSpace(msg.text) == "/examine" {
		if err := area.StartExamination(cl); err != nil {
			cl.SendOOC(err.Error())
			return
		}
		msg.text = "~~-- " + area.Testimony().Title + " --"
		msg.color = 3
	}

	if area.Testifying() || area.Examining() {
		switch {
		case strings.TrimSpace(msg.text) == "/end":
			if err := area.EndTestimony(cl); err != nil {
				cl.SendOOC(err.Error())
				return
			}
			msg.text = ""
		case strings.HasPrefix(msg.text, "/amend "):
			part := strings.Split(msg.text, " ")
			idx, err := strconv.Atoi(part[1])
			if err != nil {
				cl.SendOOC("That does not look like a valid statement number!")
				return
			}
			msg.text = strings.Join(part[2:], " ")
			st := append(game.Statement{}, args...)
			if len(st) > icFieldText {
				st[icFieldText] = msg.text
			}
			if err := area.AmendTestimony(cl, idx, st); err != nil {
				cl.SendOOC(err.Error())
				return
			}
			msg.color = 1
			if area.Testifying() {
				return
			}
			area.SetExamineIndex(idx)
		case strings.HasPrefix(msg.text, "/add ") && area.Examining():
			msg.text = msg.text[len("/add "):]
			st := append(game.Statement{}, args...)
			if len(st) > icFieldText {
				st[icFieldText] = msg.text
			}
			if !area.Testimony().Add(st) {
				cl.SendOOC("The statement limit has been reached!")
				return
			}
			area.SetExamineIndex(len(area.Testimony().Statements) - 1)
			msg.color = 1
		case strings.HasPrefix(msg.text, "/remove "):
			part := strings.Split(msg.text, " ")
			idx, err := strconv.Atoi(part[1])
			if err != nil {
				cl.SendOOC("That does not look like a valid statement number!")
				return
			}
			if err := area.RemoveStatement(cl, idx); err != nil {
				cl.SendOOC(err.Error())
				return
			}
			msg.text = ""
		}
		if area.Examining() && len(msg.text) > 0 &&
			(msg.text[0] == '>' || msg.text[0] == '<' || msg.text[0] == '=') {
			target, err := strconv.Atoi(strings.TrimSpace(msg.text[1:]))
			hasTarget := err == nil
			if err := area.NavigateTestimony(cl, msg.text[0], target, hasTarget); err != nil {
				cl.SendOOC(err.Error())
			}
			return
		}
	}

	// Field sanity. A message failing any of these is dropped outright:
	// no conforming client produces it.
	switch msg.msgType {
	case "chat", "0", "1", "2", "3", "4", "5":
	default:
		return
	}
	if msg.animType == 4 {
		msg.animType = 6
	}
	switch msg.animType {
	case 0, 1, 2, 5, 6:
	default:
		return
	}
	if msg.charID != cl.CharID() {
		return
	}
	if msg.sfxDelay < 0 {
		return
	}
	if strings.Contains(msg.button, "4") && !strings.Contains(msg.button, "<and>") {
		if !isDigits(msg.button) {
			return
		}
	}
	if msg.evidence < 0 {
		return
	}
	if msg.ding != 0 && msg.ding != 1 {
		return
	}
	if msg.color < 0 || msg.color > 8 {
		return
	}
	if utf8.RuneCountInString(msg.showname) > 15 {
		cl.SendOOC("Your IC showname is way too long!")
		return
	}
	cl.SetShowname(msg.showname)

	// Downgrade interrupting preanims where the client or the room asks
	// for non-interrupting ones, and strip shouts where disallowed.
	if msg.nonintPre == 1 {
		if btn, err := strconv.Atoi(msg.button); err == nil {
			switch btn {
			case 1, 2, 3, 4, 23:
				if msg.animType == 1 || msg.animType == 2 {
					msg.animType = 0
				} else if msg.animType == 6 {
					msg.animType = 5
				}
			}
		}
	}
	if area.NonIntPresOnly {
		if msg.animType == 1 || msg.animType == 2 {
			msg.animType = 0
			msg.nonintPre = 1
		} else if msg.animType == 6 {
			msg.animType = 5
			msg.nonintPre = 1
		}
	}
	if !area.ShoutsAllowed {
		if msg.animType == 2 {
			msg.animType = 1
		} else if msg.animType == 6 {
			msg.animType = 5
		}
		msg.button = "0"
		msg.ding = 0
	}

	if utf8.RuneCountInString(msg.text) > g.Config.MaxChars {
		return
	}

	text := c.engine.dezalgo(msg.text)
	if r := []rune(text); len(r) > 256 {
		text = string(r[:256])
	}
	if cl.Shaken {
		text = game.ShakeMessage(text)
	}
	if cl.Disemvowel {
		text = game.DisemvowelMessage(text)
	}

	// Exact-repeat guard.
	if strings.TrimSpace(text) != "" {
		last := area.LastICMessage()
		if len(last) > icFieldCharID &&
			last[icFieldCharID] == itoa(msg.charID) &&
			trimTrailingSpace(last[icFieldText]) == trimTrailingSpace(text) {
			cl.SendOOC("Your message is identical to the one you just sent.")
			return
		}
	}

	// Presenting evidence reveals it to the whole room.
	globalEvi := 0
	if msg.evidence != 0 {
		globalEvi = cl.ResolveEvidence(msg.evidence)
	}
	if globalEvi > 0 {
		ev := area.Evidence().Evidences[globalEvi-1]
		if ev.Pos != "all" {
			ev.Pos = "all"
			area.BroadcastEvidenceList()
		}
	}

	// Pairing: the pair only renders when the referenced character's
	// player points back at us from the same position.
	cl.UpdatePairInfo(msg.charidPair, msg.offsetPair, msg.anim,
		msg.animType != 5 && msg.animType != 6, msg.flip, msg.folder)

	pairField := "-1"
	otherOffset, otherEmote, otherFolder := "0", "", ""
	otherFlip := 0
	if msg.charidPair > -1 {
		for _, target := range g.Clients.InArea(cl.AreaID()) {
			if target.ID == cl.ID {
				continue
			}
			if target.CharID() != msg.charidPair {
				continue
			}
			info := target.PairInfo()
			if info.PairedCharID != cl.CharID() || target.Pos() != cl.Pos() {
				continue
			}
			pairField = itoa(msg.charidPair)
			if msg.pairOrder != "" {
				pairField += "^" + msg.pairOrder
			}
			otherOffset = info.OffsetPair
			otherEmote = info.LastSprite
			otherFlip = info.Flip
			otherFolder = info.ClaimedFolder
			break
		}
	}

	if cl.AFK() {
		g.Clients.ToggleAFK(cl)
	}

	sendArgs := []string{
		msg.msgType, msg.pre, msg.folder, msg.anim, text, msg.pos, msg.sfx,
		itoa(msg.animType), itoa(msg.charID), itoa(msg.sfxDelay), msg.button,
		itoa(globalEvi), itoa(msg.flip), itoa(msg.ding), itoa(msg.color),
		msg.showname, pairField, otherFolder, otherEmote, msg.offsetPair,
		otherOffset, itoa(otherFlip), itoa(msg.nonintPre), msg.sfxLooping,
		itoa(msg.screenshake), msg.framesShake, msg.framesRealization,
		msg.framesSfx, itoa(additive), msg.effect,
	}

	area.SetLastICMessage(sendArgs)
	area.SendCommand("MS", sendArgs...)
	if len(targetAreas) > 0 {
		g.Areas.SendRemoteCommand(targetAreas, "MS", sendArgs...)
	}

	tagged := append([]string{}, sendArgs...)
	tagged[icFieldText] = "[" + area.Abbreviation + "]" + text
	area.SendOwnerCommand("MS", tagged...)

	area.SetNextMsgDelay(utf8.RuneCountInString(text))

	if g.Audit != nil {
		g.Audit.LogIC(cl.IPID, area.Name, cl.CharName(), cl.Showname(), text)
	}
	if area.Recording() {
		area.RecordMessage(args)
	}
	if area.Testifying() {
		if !area.Testimony().Add(append(game.Statement{}, sendArgs...)) {
			cl.SendOOC("The statement limit has been reached!")
		}
	}
}

func trimTrailingSpace(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}
