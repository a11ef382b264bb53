package contract

import (
	"context"
	"strconv"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
)

// The dispatch layer is the contract's external invocation surface: an
// operation name plus an ordered list of string arguments, matching how the
// host environment totally orders and replicates calls. Submit covers
// state-changing operations, Evaluate the read-only ones. The operation-name
// switches are exhaustive over the public surface; unknown names and
// malformed arguments fail with a ValidationError before anything executes.

func argCount(op string, args []string, want int) error {
	if len(args) != want {
		return &model.ValidationError{
			Field:  "args",
			Reason: op + " expects " + strconv.Itoa(want) + " arguments, got " + strconv.Itoa(len(args)),
		}
	}
	return nil
}

func argInt(value, field string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Reason: "must be an integer"}
	}
	return n, nil
}

func argFloat(value, field string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Reason: "must be a number"}
	}
	return f, nil
}

func argBool(value, field string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &model.ValidationError{Field: field, Reason: "must be a boolean"}
	}
	return b, nil
}

// Submit executes a state-changing operation by name. The argument order per
// operation is fixed and documented case by case below.
func (e *Engine) Submit(ctx context.Context, call Call, op string, args []string) (any, error) {
	switch op {
	case "CreateProduct": // id, name, description
		if err := argCount(op, args, 3); err != nil {
			return nil, err
		}
		return e.CreateProduct(ctx, call, args[0], args[1], args[2])

	case "ActivateProduct": // id
		if err := argCount(op, args, 1); err != nil {
			return nil, err
		}
		return e.ActivateProduct(ctx, call, args[0])

	case "DeactivateProduct": // id
		if err := argCount(op, args, 1); err != nil {
			return nil, err
		}
		return e.DeactivateProduct(ctx, call, args[0])

	case "CreateBatch": // id, product_id, owner_id, business_number, quantity, start_date, expected_end_date, location, qr_code, notes
		if err := argCount(op, args, 10); err != nil {
			return nil, err
		}
		quantity, err := argInt(args[4], "quantity")
		if err != nil {
			return nil, err
		}
		return e.CreateBatch(ctx, call, CreateBatchParams{
			ID:              args[0],
			ProductID:       args[1],
			OwnerID:         args[2],
			BusinessNumber:  args[3],
			Quantity:        quantity,
			StartDate:       args[5],
			ExpectedEndDate: args[6],
			Location:        args[7],
			QRCode:          args[8],
			Notes:           args[9],
		})

	case "UpdateBatchStatus": // id, new_status
		if err := argCount(op, args, 2); err != nil {
			return nil, err
		}
		return e.UpdateBatchStatus(ctx, call, args[0], model.Status(args[1]))

	case "CompleteBatch": // id, actual_end_date
		if err := argCount(op, args, 2); err != nil {
			return nil, err
		}
		return e.CompleteBatch(ctx, call, args[0], args[1])

	case "RecordLifecycleEvent": // id, batch_id, event_type, description, recorded_by, event_date, quantity_affected, metadata
		if err := argCount(op, args, 8); err != nil {
			return nil, err
		}
		affected, err := argInt(args[6], "quantity_affected")
		if err != nil {
			return nil, err
		}
		return e.RecordLifecycleEvent(ctx, call, RecordLifecycleEventParams{
			ID:               args[0],
			BatchID:          args[1],
			EventType:        args[2],
			Description:      args[3],
			RecordedBy:       args[4],
			EventDate:        args[5],
			QuantityAffected: affected,
			Metadata:         args[7],
		})

	case "CreateTransportManifest": // id, batch_id, from_party_id, to_party_id, vehicle_id, driver_name, departure_time, origin_location, destination_location, temperature_monitored, notes
		if err := argCount(op, args, 11); err != nil {
			return nil, err
		}
		monitored, err := argBool(args[9], "temperature_monitored")
		if err != nil {
			return nil, err
		}
		return e.CreateTransportManifest(ctx, call, CreateTransportParams{
			ID:                   args[0],
			BatchID:              args[1],
			FromPartyID:          args[2],
			ToPartyID:            args[3],
			VehicleID:            args[4],
			DriverName:           args[5],
			DepartureTime:        args[6],
			OriginLocation:       args[7],
			DestinationLocation:  args[8],
			TemperatureMonitored: monitored,
			Notes:                args[10],
		})

	case "UpdateTransportStatus": // id, new_status, arrival_time
		if err := argCount(op, args, 3); err != nil {
			return nil, err
		}
		return e.UpdateTransportStatus(ctx, call, args[0], model.Status(args[1]), args[2])

	case "AddTemperatureLog": // id, transport_id, reading, timestamp, location
		if err := argCount(op, args, 5); err != nil {
			return nil, err
		}
		reading, err := argFloat(args[2], "reading")
		if err != nil {
			return nil, err
		}
		return e.AddTemperatureLog(ctx, call, args[0], args[1], reading, args[3], args[4])

	case "RecordProcessing", "UpdateProcessing": // id, batch_id, process_date, facility_name, output_count, yield_kg, quality_score, notes
		if err := argCount(op, args, 8); err != nil {
			return nil, err
		}
		outputCount, err := argInt(args[4], "output_count")
		if err != nil {
			return nil, err
		}
		yieldKg, err := argFloat(args[5], "yield_kg")
		if err != nil {
			return nil, err
		}
		quality, err := argFloat(args[6], "quality_score")
		if err != nil {
			return nil, err
		}
		p := ProcessingParams{
			ID:           args[0],
			BatchID:      args[1],
			ProcessDate:  args[2],
			FacilityName: args[3],
			OutputCount:  outputCount,
			YieldKg:      yieldKg,
			QualityScore: quality,
			Notes:        args[7],
		}
		if op == "RecordProcessing" {
			return e.RecordProcessing(ctx, call, p)
		}
		return e.UpdateProcessing(ctx, call, p)

	case "IssueCertification": // id, processing_id, cert_type, issued_date, expiry_date, issuer_id, notes
		if err := argCount(op, args, 7); err != nil {
			return nil, err
		}
		return e.IssueCertification(ctx, call, IssueCertificationParams{
			ID:           args[0],
			ProcessingID: args[1],
			CertType:     args[2],
			IssuedDate:   args[3],
			ExpiryDate:   args[4],
			IssuerID:     args[5],
			Notes:        args[6],
		})

	case "UpdateCertificationStatus": // id, new_status
		if err := argCount(op, args, 2); err != nil {
			return nil, err
		}
		return e.UpdateCertificationStatus(ctx, call, args[0], model.Status(args[1]))

	case "CreateRegulatoryRecord": // id, batch_id, record_type, issued_date, expiry_date, regulator_id, details
		if err := argCount(op, args, 7); err != nil {
			return nil, err
		}
		return e.CreateRegulatoryRecord(ctx, call, CreateRegulatoryParams{
			ID:          args[0],
			BatchID:     args[1],
			RecordType:  args[2],
			IssuedDate:  args[3],
			ExpiryDate:  args[4],
			RegulatorID: args[5],
			Details:     args[6],
		})

	case "UpdateRegulatoryStatus": // id, new_status, rejection_reason
		if err := argCount(op, args, 3); err != nil {
			return nil, err
		}
		return e.UpdateRegulatoryStatus(ctx, call, args[0], model.Status(args[1]), args[2])

	case "FlagRegulatoryAudit": // id, flag
		if err := argCount(op, args, 2); err != nil {
			return nil, err
		}
		return e.FlagRegulatoryAudit(ctx, call, args[0], args[1])

	default:
		return nil, &model.ValidationError{Field: "operation", Reason: "unknown operation " + strconv.Quote(op)}
	}
}

// Evaluate executes a read-only operation by name. Reads are open to any
// authenticated caller; the Call role is not consulted.
func (e *Engine) Evaluate(ctx context.Context, op string, args []string) (any, error) {
	one := func() (string, error) {
		if err := argCount(op, args, 1); err != nil {
			return "", err
		}
		return args[0], nil
	}

	switch op {
	case "GetProduct":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetProduct(ctx, id)
	case "GetBatch":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetBatch(ctx, id)
	case "GetLifecycleEvent":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetLifecycleEvent(ctx, id)
	case "GetTransport":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetTransport(ctx, id)
	case "GetTemperatureLog":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetTemperatureLog(ctx, id)
	case "GetProcessingRecord":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetProcessingRecord(ctx, id)
	case "GetCertification":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetCertification(ctx, id)
	case "GetRegulatoryRecord":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetRegulatoryRecord(ctx, id)
	case "GetBatchesByOwner":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetBatchesByOwner(ctx, id)
	case "GetBatchesByProduct":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetBatchesByProduct(ctx, id)
	case "GetBatchLifecycleEvents":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetBatchLifecycleEvents(ctx, id)
	case "GetTransportsByBatch":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetTransportsByBatch(ctx, id)
	case "GetTransportTemperatureLogs":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetTransportTemperatureLogs(ctx, id)
	case "GetProcessingByBatch":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetProcessingByBatch(ctx, id)
	case "GetCertificationsByProcessing":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetCertificationsByProcessing(ctx, id)
	case "GetRegulatoryRecordsByBatch":
		id, err := one()
		if err != nil {
			return nil, err
		}
		return e.GetRegulatoryRecordsByBatch(ctx, id)
	default:
		return nil, &model.ValidationError{Field: "operation", Reason: "unknown operation " + strconv.Quote(op)}
	}
}
