package api

import (
	"context"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/service/attendance"
	"github.com/Domenick1991/classbooking/internal/service/booking"
	"github.com/Domenick1991/classbooking/internal/service/profile"
	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"github.com/stretchr/testify/mock"
)

type MockScheduleUseCase struct {
	mock.Mock
}

func (m *MockScheduleUseCase) Week(ctx context.Context, at time.Time) (*schedule.WeekSchedule, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.WeekSchedule), args.Error(1)
}

func (m *MockScheduleUseCase) GenerateOccurrences(ctx context.Context, callerID string, daysAhead *int) (schedule.GenerateResult, error) {
	args := m.Called(ctx, callerID, daysAhead)
	return args.Get(0).(schedule.GenerateResult), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, callerID string, input booking.BookInput) (*domain.Booking, error) {
	args := m.Called(ctx, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, callerID, classID string) (*domain.Booking, error) {
	args := m.Called(ctx, callerID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListMine(ctx context.Context, callerID string) ([]domain.Booking, error) {
	args := m.Called(ctx, callerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockAttendanceUseCase struct {
	mock.Mock
}

func (m *MockAttendanceUseCase) CheckIn(ctx context.Context, callerID string, input attendance.CheckInInput) (*domain.Booking, error) {
	args := m.Called(ctx, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockAttendanceUseCase) Roster(ctx context.Context, callerID, classID string) (*attendance.Roster, error) {
	args := m.Called(ctx, callerID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Roster), args.Error(1)
}

type MockTemplateUseCase struct {
	mock.Mock
}

func (m *MockTemplateUseCase) List(ctx context.Context, callerID string) ([]domain.ClassTemplate, error) {
	args := m.Called(ctx, callerID)
	return args.Get(0).([]domain.ClassTemplate), args.Error(1)
}

func (m *MockTemplateUseCase) Create(ctx context.Context, callerID string, input schedule.TemplateInput) (*domain.ClassTemplate, error) {
	args := m.Called(ctx, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassTemplate), args.Error(1)
}

func (m *MockTemplateUseCase) Update(ctx context.Context, callerID, id string, input schedule.TemplateInput) (*domain.ClassTemplate, error) {
	args := m.Called(ctx, callerID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassTemplate), args.Error(1)
}

func (m *MockTemplateUseCase) SetActive(ctx context.Context, callerID, id string, active bool) (*domain.ClassTemplate, error) {
	args := m.Called(ctx, callerID, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassTemplate), args.Error(1)
}

func (m *MockTemplateUseCase) Delete(ctx context.Context, callerID, id string) error {
	args := m.Called(ctx, callerID, id)
	return args.Error(0)
}

type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) Get(ctx context.Context, callerID string) (*domain.Profile, error) {
	args := m.Called(ctx, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileUseCase) Save(ctx context.Context, callerID string, input profile.ProfileInput) (*domain.Profile, error) {
	args := m.Called(ctx, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
