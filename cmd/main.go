package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuitionlab/tuition-platform/internal/config"
	"github.com/tuitionlab/tuition-platform/internal/db"
	"github.com/tuitionlab/tuition-platform/internal/httpapi"
	"github.com/tuitionlab/tuition-platform/internal/model"
	"github.com/tuitionlab/tuition-platform/internal/repository"
	"github.com/tuitionlab/tuition-platform/internal/service"
)

func main() {
	// 1. Загружаем конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(cfg.DB)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	classRepo := repository.NewGormClassRepository(gormDB)
	tutorRepo := repository.NewGormTutorRepository(gormDB)
	rescheduleRepo := repository.NewGormRescheduleRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 5. Сервисы.
	timetableSvc := service.NewTimetableService(classRepo, tutorRepo, eventRepo)
	rescheduleSvc := service.NewRescheduleService(classRepo, rescheduleRepo, eventRepo)
	identitySvc := service.NewIdentityService(userRepo)

	// 6. HTTP API.
	app := httpapi.NewApp(httpapi.NewHandler(timetableSvc, rescheduleSvc, identitySvc))

	log.Printf("tuition core listening on %s", cfg.HTTPAddr)

	// 7. Запускаем сервер в горутине.
	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("http listen: %v", err)
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down http server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
