package paymentController

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	courseModels "adconnect/models/course"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"
	paymentValidator "adconnect/validators/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// callbackAccepted is the only answer Daraja gets, whatever happened, so it
// never retries a callback.
var callbackAccepted = fiber.Map{"ResultCode": 0, "ResultDesc": "Accepted"}

func STKPush(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSTKPush").(*paymentValidator.STKPushRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	log := logger.Log.With("payments")

	var client models.Student
	if err := db.First(&client, uint(reqData.Client)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Client not found", nil)
		}
		log.Error().Err(err).Uint("client_id", uint(reqData.Client)).Msg("fetching client")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to initiate payment!", nil)
	}

	var course courseModels.Course
	if err := db.Preload("Package").First(&course, uint(reqData.Course)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
		}
		log.Error().Err(err).Uint("course_id", uint(reqData.Course)).Msg("fetching course")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to initiate payment!", nil)
	}

	if reqData.Package != 0 && uint(reqData.Package) != course.PackageID {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"package": "package does not match the course",
		})
	}
	pkg := course.Package

	tier, ok := pkg.Tier(reqData.Plan)
	if !ok {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"plan": "the " + reqData.Plan + " tier of " + pkg.PackageName + " has no price",
		})
	}

	phone := reqData.Phone
	if phone == "" {
		normalized, err := utils.NormalizeMSISDN(client.Phone)
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"phone": "client phone is not a Safaricom number, send phone explicitly",
			})
		}
		phone = normalized
	}

	if utils.Mpesa == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment gateway is not configured!", nil)
	}

	payment := models.Payment{
		ClientID:         client.ID,
		CourseID:         course.ID,
		PackageID:        pkg.ID,
		Plan:             tier.Plan,
		Amount:           tier.Amount,
		Phone:            phone,
		Status:           models.PaymentPending,
		AccountReference: uuid.NewString(),
	}

	resp, sent, err := utils.Mpesa.STKPush(c.UserContext(), utils.STKPushRequest{
		Amount:           int(math.Ceil(tier.Amount)),
		Phone:            phone,
		AccountReference: payment.AccountReference,
		TransactionDesc:  course.Title,
	})
	if raw, mErr := json.Marshal(sent); mErr == nil && sent != nil {
		payment.GatewayRequest = datatypes.JSON(raw)
	}
	if resp != nil {
		payment.MerchantRequestID = resp.MerchantRequestID
		if resp.CheckoutRequestID != "" {
			checkoutID := resp.CheckoutRequestID
			payment.CheckoutRequestID = &checkoutID
		}
	}

	if err != nil {
		payment.Status = models.PaymentFailed
		payment.ResultDesc = err.Error()
		if cErr := db.Create(&payment).Error; cErr != nil {
			log.Error().Err(cErr).Msg("recording failed push")
		}
		log.Error().Err(err).Uint("client_id", client.ID).Str("phone", phone).Msg("stk push failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to initiate payment!", payment)
	}

	if err := db.Create(&payment).Error; err != nil {
		log.Error().Err(err).Str("checkout_request_id", resp.CheckoutRequestID).Msg("saving pending payment")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record payment!", nil)
	}

	log.Info().
		Uint("payment_id", payment.ID).
		Str("checkout_request_id", resp.CheckoutRequestID).
		Float64("amount", payment.Amount).
		Msg("stk push sent")

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment initiated. Check your phone to complete the payment.", fiber.Map{
		"payment":         payment,
		"CustomerMessage": resp.CustomerMessage,
	})
}

// Callback receives Daraja's asynchronous result for a push.
func Callback(c *fiber.Ctx) error {
	log := logger.Log.With("payments")

	payload := append([]byte(nil), c.Body()...)
	var cb utils.STKCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		log.Warn().Err(err).Msg("unreadable mpesa callback")
		return c.Status(fiber.StatusOK).JSON(callbackAccepted)
	}

	result := cb.Body.StkCallback
	if result.CheckoutRequestID == "" {
		log.Warn().Msg("mpesa callback without CheckoutRequestID")
		return c.Status(fiber.StatusOK).JSON(callbackAccepted)
	}

	db := database.Database.Db

	var payment models.Payment
	if err := db.Where("checkout_request_id = ?", result.CheckoutRequestID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("checkout_request_id", result.CheckoutRequestID).Msg("callback for unknown payment")
		} else {
			log.Error().Err(err).Str("checkout_request_id", result.CheckoutRequestID).Msg("fetching payment for callback")
		}
		return c.Status(fiber.StatusOK).JSON(callbackAccepted)
	}

	_, _, err := utils.ApplyPaymentResult(db, payment.ID, utils.PaymentResult{
		ResultCode: result.ResultCode,
		ResultDesc: result.ResultDesc,
		Receipt:    cb.Receipt(),
		AmountPaid: cb.Amount(),
		Date:       cb.TransactionDate(time.Now()),
		Payload:    payload,
	})
	switch {
	case errors.Is(err, utils.ErrPaymentNotPending):
		log.Info().Uint("payment_id", payment.ID).Str("status", payment.Status).Msg("duplicate callback ignored")
	case err != nil:
		log.Error().Err(err).Uint("payment_id", payment.ID).Msg("applying callback")
	}

	return c.Status(fiber.StatusOK).JSON(callbackAccepted)
}

func ListPayments(c *fiber.Ctx) error {
	db := database.Database.Db.Model(&models.Payment{})

	if status, _ := c.Locals("paymentStatus").(string); status != "" {
		db = db.Where("status = ?", status)
	}
	for _, filter := range []string{"client", "course"} {
		raw := c.Query(filter)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+filter+" ID!", nil)
		}
		db = db.Where(filter+" = ?", id)
	}

	var payments []models.Payment
	if err := db.Scopes(utils.Paginate(c)).Order("id desc").Find(&payments).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing payments")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully.", payments)
}

func findPayment(c *fiber.Ctx) (*models.Payment, error) {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Payment ID!", nil)
	}

	var payment models.Payment
	if err := database.Database.Db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found", nil)
		}
		logger.Log.Error().Err(err).Uint("payment_id", id).Msg("fetching payment")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payment!", nil)
	}
	return &payment, nil
}

func GetPayment(c *fiber.Ctx) error {
	payment, err := findPayment(c)
	if payment == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment fetched successfully.", payment)
}

// QueryPayment asks Daraja for the outcome of a payment whose callback never
// arrived.
func QueryPayment(c *fiber.Ctx) error {
	payment, err := findPayment(c)
	if payment == nil {
		return err
	}

	if !payment.IsPending() || payment.CheckoutRequestID == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment is no longer pending!", payment)
	}
	if utils.Mpesa == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment gateway is not configured!", nil)
	}

	log := logger.Log.With("payments")

	resp, err := utils.Mpesa.STKQuery(c.UserContext(), *payment.CheckoutRequestID)
	if err != nil {
		log.Error().Err(err).Uint("payment_id", payment.ID).Msg("stk query failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to query payment status!", nil)
	}

	code, done := resp.ResultCodeInt()
	if !done {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment is still being processed.", payment)
	}

	db := database.Database.Db
	updated, _, err := utils.ApplyPaymentResult(db, payment.ID, utils.PaymentResult{
		ResultCode: code,
		ResultDesc: resp.ResultDesc,
		AmountPaid: payment.Amount,
	})
	switch {
	case errors.Is(err, utils.ErrPaymentNotPending):
		// a callback won the race
		if err := db.First(payment, payment.ID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payment!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status fetched.", payment)
	case err != nil:
		log.Error().Err(err).Uint("payment_id", payment.ID).Msg("applying query result")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status updated.", updated)
}
