package features_test

import (
	"errors"
	"testing"

	"github.com/okian/bankpredict/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func mustSchema(names ...string) features.Schema {
	s, err := features.NewSchema(names)
	if err != nil {
		panic(err)
	}
	return s
}

func sampleRaw() features.Raw {
	return features.Raw{
		Numeric: map[string]float64{"age": 41, "balance": 2343},
		Categorical: map[string]string{
			"marital":  "married",
			"housing":  "yes",
			"month":    "may",
			"poutcome": "unknown",
		},
	}
}

func TestBuilder_Build(t *testing.T) {
	Convey("Given the default builder", t, func() {
		b := features.NewBuilder()

		Convey("When building the reference scenario", func() {
			s := mustSchema("age", "balance", "marital_married", "housing_yes", "month_may", "poutcome_success")
			v, err := b.Build(s, sampleRaw())

			Convey("Then the vector has the expected values in schema order", func() {
				So(err, ShouldBeNil)
				So(v.Names(), ShouldResemble, s.Names())
				So(v.Values(), ShouldResemble, []float64{41, 2343, 1, 1, 1, 0})
			})

			Convey("And repeated builds are identical", func() {
				again, err := b.Build(s, sampleRaw())
				So(err, ShouldBeNil)
				So(again.Values(), ShouldResemble, v.Values())
				So(again.Names(), ShouldResemble, v.Names())
			})
		})

		Convey("When numeric values carry fractions", func() {
			s := mustSchema("balance", "age")
			raw := features.Raw{Numeric: map[string]float64{"balance": -12.375, "age": 41}}
			v, err := b.Build(s, raw)

			Convey("Then they are copied verbatim", func() {
				So(err, ShouldBeNil)
				So(v.Values(), ShouldResemble, []float64{-12.375, 41})
			})
		})

		Convey("When categorical values differ in case", func() {
			s := mustSchema("housing_yes")
			upper, err := b.Build(s, features.Raw{Categorical: map[string]string{"housing": "YES"}})
			So(err, ShouldBeNil)
			no, err := b.Build(s, features.Raw{Categorical: map[string]string{"housing": "no"}})
			So(err, ShouldBeNil)

			Convey("Then matching ignores case and mismatches are 0", func() {
				So(upper.At(0), ShouldEqual, 1)
				So(no.At(0), ShouldEqual, 0)
			})
		})

		Convey("When values contain dots, dashes and underscores", func() {
			s := mustSchema("job_admin.", "job_blue-collar", "job_self_employed")
			v, err := b.Build(s, features.Raw{Categorical: map[string]string{"job": "Blue-Collar"}})

			Convey("Then the full suffix is compared", func() {
				So(err, ShouldBeNil)
				So(v.Values(), ShouldResemble, []float64{0, 1, 0})
			})
		})

		Convey("When the schema has slots the request cannot fill", func() {
			s := mustSchema("age", "pdays", "contact_cellular", "unrelated")
			v, err := b.Build(s, features.Raw{
				Numeric:     map[string]float64{"age": 30, "extra": 99},
				Categorical: map[string]string{"contact": "telephone", "colour": "red"},
			})

			Convey("Then those slots default to 0 and extra fields are ignored", func() {
				So(err, ShouldBeNil)
				So(v.Values(), ShouldResemble, []float64{30, 0, 0, 0})
			})
		})

		Convey("When a categorical field is absent", func() {
			s := mustSchema("age", "poutcome_success")
			raw := features.Raw{Numeric: map[string]float64{"age": 41}}
			v, err := b.Build(s, raw)

			Convey("Then the one-hot slot is 0 under the zero policy", func() {
				So(b.Policy(), ShouldEqual, features.MissingAsZero)
				So(err, ShouldBeNil)
				So(v.Values(), ShouldResemble, []float64{41, 0})
			})
		})

		Convey("When the schema is the zero value", func() {
			_, err := b.Build(features.Schema{}, sampleRaw())

			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
		})
	})

	Convey("Given a strict builder", t, func() {
		b := features.NewBuilder(features.WithMissingPolicy(features.MissingStrict))
		s := mustSchema("age", "poutcome_success")

		Convey("When a categorical field is absent", func() {
			_, err := b.Build(s, features.Raw{Numeric: map[string]float64{"age": 41}})

			Convey("Then a MissingFieldError names the field and slot", func() {
				So(errors.Is(err, features.ErrMissingField), ShouldBeTrue)
				var mf *features.MissingFieldError
				So(errors.As(err, &mf), ShouldBeTrue)
				So(mf.Field, ShouldEqual, "poutcome")
				So(mf.Slot, ShouldEqual, "poutcome_success")
			})
		})

		Convey("When the field is present but does not match", func() {
			v, err := b.Build(s, features.Raw{Categorical: map[string]string{"poutcome": "failure"}})

			Convey("Then the slot is 0 without error", func() {
				So(err, ShouldBeNil)
				So(v.Values(), ShouldResemble, []float64{0, 0})
			})
		})
	})

	Convey("Given custom categorical fields", t, func() {
		b := features.NewBuilder(features.WithCategoricalFields("pay", "pay_method", "pay"))
		s := mustSchema("pay_method_card", "pay_cash")
		v, err := b.Build(s, features.Raw{Categorical: map[string]string{"pay_method": "card", "pay": "cash"}})

		Convey("Then the longest field prefix wins", func() {
			So(err, ShouldBeNil)
			So(v.Values(), ShouldResemble, []float64{1, 1})
		})
	})
}

func TestParseMissingPolicy(t *testing.T) {
	Convey("Given policy strings", t, func() {
		p, ok := features.ParseMissingPolicy("")
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, features.MissingAsZero)

		p, ok = features.ParseMissingPolicy(" Strict ")
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, features.MissingStrict)

		_, ok = features.ParseMissingPolicy("lenient")
		So(ok, ShouldBeFalse)
	})
}
