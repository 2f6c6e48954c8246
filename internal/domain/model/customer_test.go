package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/bankpredict/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

const validCustomerJSON = `{
	"age": 41, "job": "management", "marital": "married", "education": "tertiary",
	"default": "no", "balance": 2343, "housing": "yes", "loan": "no",
	"contact": "unknown", "day": 5, "month": "may", "duration": 1042,
	"campaign": 1, "pdays": -1, "previous": 0, "poutcome": "unknown",
	"y": "yes"
}`

func TestDecodeCustomer(t *testing.T) {
	convey.Convey("Given a complete request body", t, func() {
		c, err := model.DecodeCustomer([]byte(validCustomerJSON))

		convey.Convey("Then every field is decoded and unknown keys are ignored", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Age, convey.ShouldEqual, 41)
			convey.So(c.Balance, convey.ShouldEqual, 2343)
			convey.So(c.Pdays, convey.ShouldEqual, -1)
			convey.So(c.Poutcome, convey.ShouldEqual, "unknown")
		})

		convey.Convey("And Raw exposes numeric and categorical fields", func() {
			raw := c.Raw()
			convey.So(raw.Numeric["age"], convey.ShouldEqual, 41)
			convey.So(raw.Numeric["duration"], convey.ShouldEqual, 1042)
			convey.So(raw.Categorical["housing"], convey.ShouldEqual, "yes")
			convey.So(len(raw.Numeric), convey.ShouldEqual, 7)
			convey.So(len(raw.Categorical), convey.ShouldEqual, 9)
		})
	})

	convey.Convey("Given a body missing fields", t, func() {
		_, err := model.DecodeCustomer([]byte(`{"age": 30, "job": "admin.", "poutcome": null}`))

		convey.Convey("Then the missing keys are named", func() {
			convey.So(errors.Is(err, model.ErrInvalidCustomer), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "marital")
			convey.So(err.Error(), convey.ShouldContainSubstring, "poutcome")
			convey.So(err.Error(), convey.ShouldNotContainSubstring, "job")
		})
	})

	convey.Convey("Given a body with a wrong type", t, func() {
		body := `{"age": "forty", "job": "a", "marital": "b", "education": "c", "default": "no",
			"balance": 1, "housing": "no", "loan": "no", "contact": "x", "day": 1, "month": "may",
			"duration": 1, "campaign": 1, "pdays": 1, "previous": 1, "poutcome": "x"}`
		_, err := model.DecodeCustomer([]byte(body))

		convey.So(errors.Is(err, model.ErrInvalidCustomer), convey.ShouldBeTrue)
	})

	convey.Convey("Given a blank categorical value", t, func() {
		c := model.Customer{Job: "x", Marital: " ", Education: "x", Default: "x", Housing: "x",
			Loan: "x", Contact: "x", Month: "x", Poutcome: "x"}

		convey.So(errors.Is(c.Validate(), model.ErrInvalidCustomer), convey.ShouldBeTrue)
	})

	convey.Convey("Given several blank categorical values", t, func() {
		c := model.Customer{Job: "x", Marital: "", Education: "x", Default: "x", Housing: "x",
			Loan: "", Contact: "x", Month: " ", Poutcome: ""}

		convey.Convey("Then the first blank field in request order is always named", func() {
			for i := 0; i < 50; i++ {
				err := c.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldEqual, "invalid customer: marital must not be blank")
			}
		})
	})

	convey.Convey("Given malformed JSON", t, func() {
		_, err := model.DecodeCustomer([]byte(`{`))

		convey.So(errors.Is(err, model.ErrInvalidCustomer), convey.ShouldBeTrue)
	})
}
