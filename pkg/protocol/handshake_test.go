package protocol

import (
	"path/filepath"
	"testing"

	"github.com/attorneyonline/tsugo/pkg/banlist"
)

func TestHandshake(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()

	feed(t, conn, "HI#hdid123#%")
	if !cl.Checked() {
		t.Fatal("client not checked after HI")
	}
	if cl.HDID() != "hdid123" {
		t.Fatalf("hdid = %q", cl.HDID())
	}
	id := tr.find("ID")
	if id == nil || id[1] != "0" {
		t.Fatalf("ID reply = %v", id)
	}
	pn := tr.find("PN")
	if pn == nil || pn[1] != "1" || pn[2] != "10" {
		t.Fatalf("PN reply = %v", pn)
	}
}

func TestSecondHandshakeDisconnects(t *testing.T) {
	env := newTestEnv(t)
	conn, _, tr := env.connect()

	feed(t, conn, "HI#hdid123#%HI#hdid123#%")
	if !tr.isClosed() {
		t.Fatal("second HI did not disconnect")
	}
}

func TestBannedClientRejected(t *testing.T) {
	env := newTestEnv(t)
	store, err := banlist.Open(filepath.Join(t.TempDir(), "bans.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	env.g.Bans = store

	conn, cl, tr := env.connect()
	if _, err := store.AddBan(cl.IPID, "", "rule 1", "mod", nil); err != nil {
		t.Fatal(err)
	}

	feed(t, conn, "HI#hdid123#%")
	if cl.Checked() {
		t.Fatal("banned client passed the handshake")
	}
	bd := tr.find("BD")
	if bd == nil {
		t.Fatal("no BD notification")
	}
	if !tr.isClosed() {
		t.Fatal("banned client not disconnected")
	}
}

func TestBanByHardwareID(t *testing.T) {
	env := newTestEnv(t)
	store, err := banlist.Open(filepath.Join(t.TempDir(), "bans.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	env.g.Bans = store
	if _, err := store.AddBan("someone-else", "evil-hdid", "evasion", "mod", nil); err != nil {
		t.Fatal(err)
	}

	conn, cl, tr := env.connect()
	feed(t, conn, "HI#evil-hdid#%")
	if cl.Checked() || tr.find("BD") == nil {
		t.Fatal("hdid ban not enforced on a fresh address")
	}
}

func TestVersionAndFeatureList(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()

	feed(t, conn, "ID#AO2#2.10.1#%")
	release, major, minor := cl.Version()
	if release != "2" || major != "10" || minor != "1" {
		t.Fatalf("version = %s.%s.%s", release, major, minor)
	}
	fl := tr.find("FL")
	if fl == nil || len(fl)-1 != 17 {
		t.Fatalf("FL reply = %v", fl)
	}
}

func TestLoadingCounts(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "askchaa#%")
	si := tr.find("SI")
	// 3 characters, no preloaded evidence, 2 areas + 3 music entries.
	if si == nil || si[1] != "3" || si[2] != "0" || si[3] != "5" {
		t.Fatalf("SI reply = %v", si)
	}
}

func TestFastLoading(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "RC#%RM#%RD#%")
	sc := tr.find("SC")
	if sc == nil || len(sc)-1 != 3 {
		t.Fatalf("SC reply = %v", sc)
	}
	sm := tr.find("SM")
	if sm == nil || len(sm)-1 != 5 || sm[1] != "Basement" {
		t.Fatalf("SM reply = %v", sm)
	}
	if tr.find("DONE") == nil {
		t.Fatal("no DONE")
	}
	if tr.find("BN") == nil {
		t.Fatal("no background sent with scene")
	}
	if !tr.hasNotice(env.g.MOTD()) {
		t.Fatal("no MOTD notice")
	}
}

func TestLegacyPagedLoading(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "askchar2#%")
	ci := tr.find("CI")
	if ci == nil || len(ci)-1 != 3 {
		t.Fatalf("CI page = %v", ci)
	}

	// Only one character page exists, so the next request rolls over
	// to music, and the page after that finishes loading.
	feed(t, conn, "AN#1#%")
	if tr.find("EM") == nil {
		t.Fatal("AN past the last char page did not start music")
	}
	feed(t, conn, "AM#1#%")
	if tr.find("DONE") == nil {
		t.Fatal("AM past the last music page did not finish loading")
	}
}

func TestCharacterSelect(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "CC#0#1#hdid#%")
	if cl.CharID() != 1 {
		t.Fatalf("charID = %d, want 1", cl.CharID())
	}
	pv := tr.find("PV")
	if pv == nil || pv[3] != "1" {
		t.Fatalf("PV reply = %v", pv)
	}
}

func TestCharacterSelectConflict(t *testing.T) {
	env := newTestEnv(t)
	_, other, _ := env.player(1)
	_ = other

	conn, cl, _ := env.connect()
	cl.SetChecked(true)
	feed(t, conn, "CC#0#1#hdid#%")
	if cl.CharID() != -1 {
		t.Fatalf("claimed a taken character, charID = %d", cl.CharID())
	}
}

func TestVersionPartialComponents(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		version               string
		release, major, minor string
	}{
		{"2", "2", "", ""},
		{"2.10", "2", "10", ""},
		{"2.10.1", "2", "10", "1"},
	}
	for _, tc := range cases {
		conn, cl, _ := env.connect()
		feed(t, conn, "ID#AO2#"+tc.version+"#%")
		release, major, minor := cl.Version()
		if release != tc.release || major != tc.major || minor != tc.minor {
			t.Errorf("version %q parsed as %q/%q/%q", tc.version, release, major, minor)
		}
	}
}
