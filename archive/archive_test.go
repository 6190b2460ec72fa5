package archive

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mtcat/bootstrap"
)

func init() {
	logging.SetLevel(logging.WARNING, "archive")
}

func TestArchive(tst *testing.T) {
	a, err := Open(filepath.Join(tst.TempDir(), "test.db"))
	if err != nil {
		tst.Fatal("Error opening:", err)
	}
	defer a.Close()

	if e, err := a.Load("gamma", "7"); e != nil || err != nil {
		tst.Error("Expected empty result, got:", e, err)
	}

	e := &bootstrap.Ensemble{
		Model:   "gamma",
		Columns: []string{"alpha", "beta"},
		Records: []bootstrap.Record{
			{Group: "7", Model: "gamma", Params: []float64{2.5, 0.01}, LogLikelihood: -20.5, AIC: 45},
			{Group: "7", Model: "gamma", Params: []float64{3.1, 0.02}, LogLikelihood: -19, AIC: 42},
		},
		Skipped: 1,
	}
	if err := a.Save("7", 42, e); err != nil {
		tst.Fatal("Error saving:", err)
	}
	entry, err := a.Load("gamma", "7")
	if err != nil || entry == nil {
		tst.Fatal("Error loading:", entry, err)
	}
	if entry.Seed != 42 || !reflect.DeepEqual(entry.Ensemble, e) {
		tst.Error("Wrong entry:", entry.Seed, entry.Ensemble)
	}

	if err := a.Save("all", 1, bootstrap.Concat(e, &bootstrap.Ensemble{Model: "story", Columns: []string{"param1", "param2"}})); err == nil {
		tst.Error("Expected error saving a mixed ensemble")
	}

	keys, err := a.Keys()
	if err != nil || !reflect.DeepEqual(keys, []string{"gamma/7"}) {
		tst.Error("Wrong keys:", keys, err)
	}
}

func TestSplitKey(tst *testing.T) {
	if m, l := SplitKey("story/12 uM"); m != "story" || l != "12 uM" {
		tst.Error("Wrong split:", m, l)
	}
	if m, l := SplitKey("gamma"); m != "gamma" || l != "" {
		tst.Error("Wrong split:", m, l)
	}
}
