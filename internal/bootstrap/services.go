package bootstrap

import (
	"github.com/Domenick1991/classbooking/config"
	"github.com/Domenick1991/classbooking/internal/kafka"
	"github.com/Domenick1991/classbooking/internal/repository"
	"github.com/Domenick1991/classbooking/internal/service/attendance"
	"github.com/Domenick1991/classbooking/internal/service/booking"
	"github.com/Domenick1991/classbooking/internal/service/profile"
	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"golang.org/x/text/language"
)

// Deps are the storage and side-effect backends. Cache and Producer are
// optional; leave them nil (not a typed nil) to run without them.
type Deps struct {
	Store     repository.Store
	Templates repository.TemplateRepository
	Classes   repository.ClassRepository
	Bookings  repository.BookingRepository
	Profiles  repository.ProfileRepository
	Cache     schedule.Cache
	Producer  kafka.Publisher
}

// NewGenerator is shared by the API process and the worker.
func NewGenerator(cfg *config.Config, deps Deps) *schedule.Generator {
	var opts []schedule.GeneratorOption
	if deps.Cache != nil {
		opts = append(opts, schedule.WithGeneratorCache(deps.Cache))
	}
	return schedule.NewGenerator(deps.Templates, deps.Classes, cfg.HomeLocation(), opts...)
}

func NewServices(cfg *config.Config, deps Deps) Services {
	home := cfg.HomeLocation()
	policy := cfg.WindowPolicy()

	scheduleOpts := []schedule.ScheduleServiceOption{}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithTimeout(cfg.OperationTimeout()),
	}
	attendanceOpts := []attendance.AttendanceServiceOption{
		attendance.WithTimeout(cfg.OperationTimeout()),
		attendance.WithLocale(language.Make(cfg.Studio.Locale)),
	}
	if deps.Cache != nil {
		scheduleOpts = append(scheduleOpts, schedule.WithCache(deps.Cache))
		bookingOpts = append(bookingOpts, booking.WithCache(deps.Cache))
	}
	if deps.Producer != nil {
		bookingOpts = append(bookingOpts,
			booking.WithProducer(deps.Producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
		attendanceOpts = append(attendanceOpts,
			attendance.WithProducer(deps.Producer, cfg.Kafka.BookingEventsTopic, cfg.Kafka.NotificationsTopic),
		)
	}

	return Services{
		Schedule:   schedule.NewScheduleService(deps.Classes, NewGenerator(cfg, deps), deps.Profiles, policy, home, scheduleOpts...),
		Templates:  schedule.NewTemplateService(deps.Templates, deps.Profiles),
		Booking:    booking.NewBookingService(deps.Store, deps.Bookings, policy, bookingOpts...),
		Attendance: attendance.NewAttendanceService(deps.Store, deps.Bookings, deps.Classes, deps.Profiles, attendanceOpts...),
		Profile:    profile.NewProfileService(deps.Profiles),
	}
}
