package main

import (
	"fmt"
	"net/http"

	"github.com/worklens-hr/attendance-backend-go/internal/config"
	appHTTP "github.com/worklens-hr/attendance-backend-go/internal/handler/http"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/cron"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/jwt"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/keylock"
	"github.com/worklens-hr/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/worklens-hr/attendance-backend-go/internal/service/attendance"
	calendarService "github.com/worklens-hr/attendance-backend-go/internal/service/calendar"
	finalizationService "github.com/worklens-hr/attendance-backend-go/internal/service/finalization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	shiftPolicyRepo := postgresql.NewShiftPolicyRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	workingRuleRepo := postgresql.NewWorkingRuleRepository(db)
	employeeDirectory := postgresql.NewEmployeeDirectory(db)
	txManager := postgresql.NewTxManager(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	appClock := clock.Real()
	locks := keylock.New()

	classifier := calendarService.NewClassifierService(holidayRepo, workingRuleRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		shiftPolicyRepo,
		appClock,
		locks,
	)
	finalizationSvc := finalizationService.NewFinalizationService(
		txManager,
		attendanceRepo,
		shiftPolicyRepo,
		employeeDirectory,
		classifier,
		appClock,
		locks,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(finalizationSvc, appClock).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, finalizationSvc, appClock)

	router := appHTTP.NewRouter(JWTService, attendanceHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
