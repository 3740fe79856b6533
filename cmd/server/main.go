package main

import (
	"strconv"

	"sabhahub/broadcast"
	"sabhahub/config"
	"sabhahub/controllers"
	"sabhahub/db"
	"sabhahub/logging"
	"sabhahub/services"
	"sabhahub/signal"
	"sabhahub/storage"
	"sabhahub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	logging.BootstrapLogger()

	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		logging.Log.Fatalf("Failed to load config: %v", err)
	}

	gdb, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logging.Log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := db.SeedSeats(gdb, cfg.Chamber.Size); err != nil {
		logging.Log.Fatalf("Failed to seed seats: %v", err)
	}
	logging.Log.Infof("Connected to %s database", cfg.Database.Driver)

	members := storage.NewGormMemberStorage(gdb)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	chairpersons := storage.NewGormChairpersonStorage(gdb)

	lookup := services.NewLookup(members, bills)
	hub := websocket.NewHub(func(seatNo int) (map[string]interface{}, bool) {
		member, err := lookup.ResolveSeat(seatNo)
		if err != nil {
			return nil, false
		}
		return map[string]interface{}{
			"seat_no": member.SeatNo,
			"name":    member.Name,
			"party":   member.Party,
			"state":   member.State,
			"picture": member.Picture,
			"vacant":  member.Vacant,
		}, true
	})

	engine := services.NewEngine(activity, hub, lookup, cfg.Chamber.ZeroHourSeconds)
	engine.Run()
	defer engine.Close()

	aggregator := services.NewAggregator(bills, activity, cfg.Aggregation.WarnUnmatchedParty)
	feed := broadcast.NewState()

	// Seat selections from the hardware panel and from the hex endpoint go
	// through the same path: display clients first, then the session engine.
	publishSeat := func(seatNo int) {
		hub.Broadcast("seat_selected", map[string]interface{}{"seat_no": seatNo})
		engine.HandleSeatSelected(seatNo)
	}

	receiver := signal.NewReceiver(cfg.Signal.Host, cfg.Signal.Port, cfg.Chamber.Size)
	receiver.Subscribe(publishSeat)
	if err := receiver.Start(); err != nil {
		logging.Log.Fatalf("Failed to start seat-signal receiver: %v", err)
	}
	defer receiver.Stop()
	logging.Log.Infof("Seat-signal receiver listening on %s", receiver.Addr())

	router := setupRouter(cfg, routerDeps{
		members:      controllers.NewMemberController(members),
		chairpersons: controllers.NewChairpersonController(chairpersons),
		bills:        controllers.NewBillController(bills, activity),
		activity:     controllers.NewActivityLogController(activity, members, bills),
		aggregation:  controllers.NewAggregationController(aggregator),
		hexSeat:      controllers.NewHexSeatController(cfg.Chamber.Size, publishSeat),
		session:      controllers.NewSessionController(engine, lookup),
		broadcast:    controllers.NewBroadcastController(feed),
		hub:          hub,
	})

	port := strconv.Itoa(cfg.Server.Port)
	logging.Log.Infof("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		logging.Log.Fatalf("Failed to start server: %v", err)
	}
}

type routerDeps struct {
	members      *controllers.MemberController
	chairpersons *controllers.ChairpersonController
	bills        *controllers.BillController
	activity     *controllers.ActivityLogController
	aggregation  *controllers.AggregationController
	hexSeat      *controllers.HexSeatController
	session      *controllers.SessionController
	broadcast    *controllers.BroadcastController
	hub          *websocket.Hub
}

func setupRouter(cfg *config.Config, deps routerDeps) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	api := router.Group("/api")
	{
		api.GET("/members", deps.members.GetAll)
		api.POST("/members", deps.members.Create)
		api.GET("/members/:seat_no", deps.members.Get)
		api.PUT("/members/:seat_no", deps.members.Update)
		api.DELETE("/members/:seat_no", deps.members.Delete)
		api.POST("/members/:seat_no/vacate", deps.members.SetVacant)

		api.GET("/chairpersons", deps.chairpersons.GetAll)
		api.POST("/chairpersons", deps.chairpersons.Create)
		api.PUT("/chairpersons/:id", deps.chairpersons.Update)
		api.DELETE("/chairpersons/:id", deps.chairpersons.Delete)

		api.GET("/bills", deps.bills.List)
		api.POST("/bills", deps.bills.Create)
		api.PUT("/bills/:id", deps.bills.Update)
		api.PATCH("/bills/:id/status", deps.bills.UpdateStatus)
		api.DELETE("/bills/:id", deps.bills.Delete)
		api.GET("/bills/:id/activity-logs", deps.activity.ListByBillID)
		api.GET("/bills/:id/consumed-time", deps.aggregation.ConsumedTime)
		api.GET("/bills/:id/member-totals", deps.aggregation.MemberTotals)

		api.GET("/activity-logs", deps.activity.List)
		api.POST("/activity-logs", deps.activity.Create)
		api.PATCH("/activity-logs/:id", deps.activity.Patch)
		api.DELETE("/activity-logs/:id", deps.activity.Delete)
		api.DELETE("/activity-logs", deps.activity.Clear)
		api.GET("/activity-logs/bill/:bill_name", deps.activity.ListByBillName)
		api.POST("/activity-logs/migrate-bill-ids", deps.activity.MigrateBillIDs)
		api.POST("/activity-logs/merge-bills", deps.activity.MergeBills)
		api.POST("/activity-logs/backfill-seats", deps.activity.BackfillSeatNumbers)
		api.DELETE("/bill-logs", deps.activity.DeleteByBill)

		api.POST("/hex-seat", deps.hexSeat.Post)

		api.GET("/session", deps.session.Get)
		api.POST("/session/start", deps.session.Start)
		api.POST("/session/pause", deps.session.Pause)
		api.POST("/session/resume", deps.session.Resume)
		api.POST("/session/stop", deps.session.Stop)
		api.POST("/session/reset", deps.session.Reset)
		api.POST("/session/context", deps.session.SetContext)
		api.DELETE("/session/context", deps.session.ClearContext)

		api.GET("/broadcast", deps.broadcast.Get)
		api.POST("/broadcast", deps.broadcast.Set)
	}

	router.GET("/ws", deps.hub.Handler)

	return router
}
