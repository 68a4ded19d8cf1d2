package routes

import (
	"github.com/labstack/echo/v4"

	"window-crm/internal/controllers"
	telegramctrl "window-crm/internal/controllers/telegram"
)

func runLeadRouter(g *echo.Group, ctrl *controllers.LeadController) {
	g.GET("/leads", ctrl.GetLeads)
	g.POST("/leads", ctrl.CreateLead)
	g.GET("/leads/:id", ctrl.FindLead)
	g.PUT("/leads/:id/stage", ctrl.UpdateStage)
	g.DELETE("/leads/:id", ctrl.DeleteLead)
	g.POST("/leads/:id/measurement", ctrl.CreateMeasurement)
}

func runMeasurementRouter(g *echo.Group, ctrl *controllers.MeasurementController) {
	g.GET("/measurements", ctrl.GetMeasurements)
	g.GET("/measurements/:id", ctrl.FindMeasurement)
	g.PUT("/measurements/:id", ctrl.UpdateMeasurement)
	g.POST("/measurements/:id/confirm", ctrl.Confirm)
	g.POST("/measurements/:id/start", ctrl.Start)
	g.POST("/measurements/:id/complete", ctrl.Complete)
	g.POST("/measurements/:id/cancel", ctrl.Cancel)
	g.POST("/measurements/:id/offer", ctrl.CreateOffer)
}

func runOrderRouter(g *echo.Group, ctrl *controllers.OrderController) {
	g.GET("/orders", ctrl.GetOrders)
	g.GET("/orders/:id", ctrl.FindOrder)
	g.GET("/orders/:id/lines", ctrl.GetOrderLines)
	g.POST("/orders/:id/lines", ctrl.AddOrderLine)
	g.POST("/orders/:id/send", ctrl.Send)
	g.POST("/orders/:id/confirm", ctrl.Confirm)
	g.POST("/orders/:id/cancel", ctrl.Cancel)
}

func runProductionRouter(g *echo.Group, ctrl *controllers.ProductionController) {
	g.GET("/productions", ctrl.GetProductions)
	g.GET("/productions/:id", ctrl.FindProduction)
	g.POST("/productions/:id/start", ctrl.Start)
	g.POST("/productions/:id/done", ctrl.MarkDone)
}

func runInstallationRouter(g *echo.Group, ctrl *controllers.InstallationController) {
	g.GET("/installations", ctrl.GetTasks)
	g.POST("/installations", ctrl.CreateTask)
	g.GET("/installations/:id", ctrl.FindTask)
	g.POST("/installations/:id/delivery", ctrl.StartDelivery)
	g.POST("/installations/:id/installation", ctrl.StartInstallation)
	g.POST("/installations/:id/cleaning", ctrl.StartCleaning)
	g.POST("/installations/:id/act", ctrl.SignAct)
}

func runTicketRouter(g *echo.Group, ctrl *controllers.TicketController) {
	g.GET("/tickets", ctrl.GetTickets)
	g.POST("/tickets", ctrl.CreateTicket)
	g.GET("/tickets/:id", ctrl.FindTicket)
	g.POST("/tickets/:id/assign", ctrl.Assign)
	g.POST("/tickets/:id/start", ctrl.Start)
	g.POST("/tickets/:id/resolve", ctrl.Resolve)
	g.POST("/tickets/:id/close", ctrl.Close)
	g.POST("/tickets/:id/warranty", ctrl.RecomputeWarranty)
}

func runEducationRouter(g *echo.Group, ctrl *controllers.EducationController) {
	g.GET("/education/courses", ctrl.GetCourses)
	g.POST("/education/courses", ctrl.CreateCourse)
	g.GET("/education/courses/:id", ctrl.FindCourse)
	g.POST("/education/courses/:id/open", ctrl.OpenCourse)
	g.GET("/education/students", ctrl.GetStudents)
	g.POST("/education/students", ctrl.CreateStudent)
	g.GET("/education/students/:id", ctrl.FindStudent)
	g.POST("/education/enrollments", ctrl.Enroll)
	g.PUT("/education/enrollments/:id/state", ctrl.AdvanceEnrollment)
	g.POST("/education/enrollments/:id/cancel", ctrl.CancelEnrollment)
	g.PUT("/education/enrollments/:id/progress", ctrl.UpdateProgress)
}

func runDashboardRouter(g *echo.Group, ctrl *controllers.DashboardController) {
	g.GET("/dashboard/funnel", ctrl.GetFunnel)
	g.GET("/dashboard/production-plan", ctrl.GetProductionPlan)
	g.GET("/dashboard/measurer-kpi", ctrl.GetMeasurerKpi)
}

func runTelegramRouter(g *echo.Group, ctrl *telegramctrl.TelegramController) {
	g.POST("/telegram/webhook/register", ctrl.RegisterWebhook)
	g.POST("/telegram/webhook/delete", ctrl.DeleteWebhook)
}
