package studio_service_api

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/service/attendance"
	"github.com/Domenick1991/classbooking/internal/service/booking"
	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	schedule   schedule.ScheduleUseCase
	bookings   booking.BookingUseCase
	attendance attendance.AttendanceUseCase
}

func NewServer(scheduleSvc schedule.ScheduleUseCase, bookingSvc booking.BookingUseCase, attendanceSvc attendance.AttendanceUseCase) *Server {
	return &Server{schedule: scheduleSvc, bookings: bookingSvc, attendance: attendanceSvc}
}

type generateRequest struct {
	DaysAhead *int `json:"daysAhead"`
}

type classRequest struct {
	ClassID  string `json:"classId"`
	UserName string `json:"userName"`
}

func (s *Server) GenerateOccurrences(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	var req generateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := s.schedule.GenerateOccurrences(ctx, callerID, req.DaysAhead)
	if err != nil {
		return nil, domain.AsError(err)
	}
	return encode(res)
}

func (s *Server) BookClass(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	var req classRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	b, err := s.bookings.Book(ctx, callerID, booking.BookInput{ClassID: req.ClassID, UserName: req.UserName})
	if err != nil {
		return nil, domain.AsError(err)
	}
	return encode(map[string]any{"success": true, "bookingId": b.ID})
}

func (s *Server) CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	var req classRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if _, err := s.bookings.Cancel(ctx, callerID, req.ClassID); err != nil {
		return nil, domain.AsError(err)
	}
	return encode(map[string]any{"success": true})
}

func (s *Server) CheckInBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	var req attendance.CheckInInput
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if _, err := s.attendance.CheckIn(ctx, callerID, req); err != nil {
		return nil, domain.AsError(err)
	}
	return encode(map[string]any{"ok": true})
}

func (s *Server) GetClassRoster(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	var req classRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	roster, err := s.attendance.Roster(ctx, callerID, req.ClassID)
	if err != nil {
		return nil, domain.AsError(err)
	}
	return encode(roster)
}

// decode maps a Struct onto a JSON-tagged request type. Struct numbers are
// doubles, so integer fields reject fractional values.
func decode(in *structpb.Struct, v any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return domain.InvalidArgument("malformed request")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.InvalidArgument("malformed request: " + err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, domain.Internal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, domain.Internal(err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return out, nil
}

var _ StudioServiceServer = (*Server)(nil)
