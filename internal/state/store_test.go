package state

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a store with a checkbox and a year select box", t, func() {
		s := NewStore()
		show := s.Declare(Checkbox("Show Dataframe", "Show Dataframe", false))
		year := s.Declare(SelectBox("Choose a year", "Choose a year", []string{"All", "1999", "2008"}, "All"))

		var triggered []string
		s.Subscribe(func(key string) { triggered = append(triggered, key) })

		Convey("Declared widgets start at their defaults", func() {
			So(show, ShouldEqual, "false")
			So(year, ShouldEqual, "All")
			So(s.Bool("Show Dataframe"), ShouldBeFalse)
		})

		Convey("An unknown key reads as the empty default", func() {
			So(s.Get("Never declared"), ShouldEqual, "")
			So(s.Bool("Never declared"), ShouldBeFalse)
		})

		Convey("Setting a year in the domain updates the value and triggers listeners", func() {
			So(s.Set("Choose a year", "1999"), ShouldBeNil)
			So(s.Get("Choose a year"), ShouldEqual, "1999")
			So(triggered, ShouldResemble, []string{"Choose a year"})
		})

		Convey("Setting a year outside the domain is rejected before any listener runs", func() {
			err := s.Set("Choose a year", "2010")
			So(errors.Is(err, ErrOutsideDomain), ShouldBeTrue)
			So(s.Get("Choose a year"), ShouldEqual, "All")
			So(triggered, ShouldBeEmpty)
		})

		Convey("Setting an undeclared key is rejected", func() {
			err := s.Set("Pick a colour", "red")
			So(errors.Is(err, ErrUnknownWidget), ShouldBeTrue)
			So(triggered, ShouldBeEmpty)
		})

		Convey("Checkbox values are normalised", func() {
			So(s.Set("Show Dataframe", "1"), ShouldBeNil)
			So(s.Get("Show Dataframe"), ShouldEqual, "true")
			So(s.Bool("Show Dataframe"), ShouldBeTrue)
			So(s.Set("Show Dataframe", "on"), ShouldNotBeNil)
		})

		Convey("Re-declaring keeps the current value across re-executions", func() {
			So(s.Set("Choose a year", "2008"), ShouldBeNil)
			again := s.Declare(SelectBox("Choose a year", "Choose a year", []string{"All", "1999", "2008"}, "All"))
			So(again, ShouldEqual, "2008")
			So(len(s.Widgets()), ShouldEqual, 2)
		})

		Convey("Re-declaring with a domain that drops the value resets it to the default", func() {
			So(s.Set("Choose a year", "2008"), ShouldBeNil)
			again := s.Declare(SelectBox("Choose a year", "Choose a year", []string{"All", "1999"}, "All"))
			So(again, ShouldEqual, "All")
			So(triggered, ShouldResemble, []string{"Choose a year"})
		})

		Convey("Snapshots do not alias the store", func() {
			w, ok := s.Widget("Choose a year")
			So(ok, ShouldBeTrue)
			w.Options[0] = "Nope"
			w2, _ := s.Widget("Choose a year")
			So(w2.Options[0], ShouldEqual, "All")
			So(w2.Kind.String(), ShouldEqual, "selectbox")
		})
	})
}

func TestSelectBoxDefaultsToFirstOption(t *testing.T) {
	Convey("A select box without an explicit default picks the first option", t, func() {
		w := SelectBox("k", "k", []string{"a", "b"}, "")
		So(w.Default, ShouldEqual, "a")
		So(w.Allows("b"), ShouldBeTrue)
		So(w.Allows("c"), ShouldBeFalse)
	})
}
