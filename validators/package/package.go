package packageValidator

import (
	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type PackageRequest struct {
	PackageName *string  `json:"package_name" form:"package_name" validate:"omitempty,notblank,max=100"`
	NPeriod     *string  `json:"n_period" form:"n_period"`
	NAmount     *float64 `json:"n_amount" form:"n_amount"`
	BPeriod     *string  `json:"b_period" form:"b_period"`
	BAmount     *float64 `json:"b_amount" form:"b_amount"`
	SPeriod     *string  `json:"s_period" form:"s_period"`
	SAmount     *float64 `json:"s_amount" form:"s_amount"`
	GPeriod     *string  `json:"g_period" form:"g_period"`
	GAmount     *float64 `json:"g_amount" form:"g_amount"`
}

func (r PackageRequest) Empty() bool {
	return r.PackageName == nil &&
		r.NPeriod == nil && r.NAmount == nil &&
		r.BPeriod == nil && r.BAmount == nil &&
		r.SPeriod == nil && r.SAmount == nil &&
		r.GPeriod == nil && r.GAmount == nil
}

// ApplyTo copies the supplied fields onto p.
func (r PackageRequest) ApplyTo(p *models.Package) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setAmount := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.PackageName, r.PackageName)
	setString(&p.NPeriod, r.NPeriod)
	setAmount(&p.NAmount, r.NAmount)
	setString(&p.BPeriod, r.BPeriod)
	setAmount(&p.BAmount, r.BAmount)
	setString(&p.SPeriod, r.SPeriod)
	setAmount(&p.SAmount, r.SAmount)
	setString(&p.GPeriod, r.GPeriod)
	setAmount(&p.GAmount, r.GAmount)
}

type tierFields struct {
	periodKey, amountKey string
	period               *string
	amount               *float64
}

func tiersOf(p *models.Package) []tierFields {
	return []tierFields{
		{"n_period", "n_amount", &p.NPeriod, &p.NAmount},
		{"b_period", "b_amount", &p.BPeriod, &p.BAmount},
		{"s_period", "s_amount", &p.SPeriod, &p.SAmount},
		{"g_period", "g_amount", &p.GPeriod, &p.GAmount},
	}
}

// ValidateTiers checks that every tier is empty or complete and that at
// least one is complete. Periods are rewritten in canonical form.
func ValidateTiers(p *models.Package) map[string]string {
	errors := make(map[string]string)
	complete := 0

	for _, t := range tiersOf(p) {
		hasPeriod := *t.period != ""
		hasAmount := *t.amount != 0
		switch {
		case !hasPeriod && !hasAmount:
			continue
		case hasPeriod && !hasAmount:
			errors[t.amountKey] = "Amount is required when a period is set!"
			continue
		case !hasPeriod && hasAmount:
			errors[t.periodKey] = "Period is required when an amount is set!"
			continue
		}

		period, err := utils.NormalizePeriod(*t.period)
		if err != nil {
			errors[t.periodKey] = "Period must look like \"3 Months\"!"
		} else {
			*t.period = period
		}
		if *t.amount < 0 {
			errors[t.amountKey] = "Amount must be a positive number!"
		}
		if err == nil && *t.amount > 0 {
			complete++
		}
	}

	if complete == 0 && len(errors) == 0 {
		errors["package"] = "At least two subsequent inputs must have value!"
	}
	if len(errors) > 0 {
		return errors
	}
	return nil
}

// CreatePackage validates a new package
func CreatePackage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PackageRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}

		errors := commonValidator.ValidateStruct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if reqData.PackageName == nil || *reqData.PackageName == "" {
			errors["package_name"] = "Package name is required!"
		}

		var pkg models.Package
		reqData.ApplyTo(&pkg)
		for k, v := range ValidateTiers(&pkg) {
			errors[k] = v
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPackage", &pkg)
		return c.Next()
	}
}

// UpdatePackage validates a partial package update. The tier rule is checked
// again by the controller once the update is merged.
func UpdatePackage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := commonValidator.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Package ID!", nil)
		}

		reqData := new(PackageRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		if reqData.Empty() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one field is required for update.", nil)
		}
		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("packageID", id)
		c.Locals("validatedPackageUpdate", reqData)
		return c.Next()
	}
}
