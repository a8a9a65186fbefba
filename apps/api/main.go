package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/htpham/tutorhub/apps/api/echo"
	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/notification"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
	"github.com/htpham/tutorhub/core/user"
	"github.com/htpham/tutorhub/services/email"
	"github.com/htpham/tutorhub/services/logger"
	"github.com/htpham/tutorhub/storage/database"
	"github.com/htpham/tutorhub/storage/database/dummy"
	"github.com/htpham/tutorhub/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)
	appLogger := logsvc.NewRollbarLogger(stdLogger, conf)
	defer appLogger.Close()

	// repositories; the in-memory store backs local development
	var (
		studentRepo    school.StudentRepository
		classRepo      school.ClassRepository
		classroomRepo  school.ClassroomRepository
		subjectRepo    school.SubjectRepository
		scheduleRepo   schedule.Repository
		attendanceRepo schedule.AttendanceRepository
		periodRepo     grade.PeriodRepository
		columnRepo     grade.ColumnRepository
		gradeRepo      grade.GradeRepository
		userRepo       user.Repository
	)
	if conf.Debug {
		db, err := dummydb.Open()
		errAndDie(appLogger, err)
		studentRepo = dummydb.NewStudentRepository(db)
		classRepo = dummydb.NewClassRepository(db)
		classroomRepo = dummydb.NewClassroomRepository(db)
		subjectRepo = dummydb.NewSubjectRepository(db)
		scheduleRepo = dummydb.NewScheduleRepository(db)
		attendanceRepo = dummydb.NewAttendanceRepository(db)
		periodRepo = dummydb.NewPeriodRepository(db)
		columnRepo = dummydb.NewColumnRepository(db)
		gradeRepo = dummydb.NewGradeRepository(db)
		userRepo = dummydb.NewUserRepository(db)
	} else {
		db, err := database.Open(conf)
		errAndDie(appLogger, err)
		defer db.Close()
		studentRepo = sqlxrepos.NewStudentRepository(db)
		classRepo = sqlxrepos.NewClassRepository(db)
		classroomRepo = sqlxrepos.NewClassroomRepository(db)
		subjectRepo = sqlxrepos.NewSubjectRepository(db)
		scheduleRepo = sqlxrepos.NewScheduleRepository(db)
		attendanceRepo = sqlxrepos.NewAttendanceRepository(db)
		periodRepo = sqlxrepos.NewPeriodRepository(db)
		columnRepo = sqlxrepos.NewColumnRepository(db)
		gradeRepo = sqlxrepos.NewGradeRepository(db)
		userRepo = sqlxrepos.NewUserRepository(db)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}

	scheduleSvc := schedule.NewService(scheduleRepo, attendanceRepo)
	schoolSvc := school.NewService(studentRepo, classRepo, classroomRepo, subjectRepo, scheduleSvc)
	gradeSvc := grade.NewService(periodRepo, columnRepo, gradeRepo)
	userSvc := user.NewService(conf, userRepo, mailSvc, appLogger)

	proj := projection.NewStore(schoolSvc, scheduleSvc, gradeSvc, appLogger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := proj.Refresh(ctx); err != nil {
		// keep serving; the snapshot stays empty until the next refresh
		appLogger.Warn("initial projection refresh failed", "error", err)
	}
	cancel()

	notificationSvc := notification.NewService(proj, userSvc)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:            conf.Server.Addr,
			Conf:            conf,
			Logger:          appLogger,
			UserSvc:         userSvc,
			SchoolSvc:       schoolSvc,
			ScheduleSvc:     scheduleSvc,
			GradeSvc:        gradeSvc,
			NotificationSvc: notificationSvc,
			Projection:      proj,
		},
	)
	app.Start()
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error())
	}
}
