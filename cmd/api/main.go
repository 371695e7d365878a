package main

import "shiftops/internal/app"

// @title           ShiftOps API
// @version         1.0
// @description     Restaurant shift operations: workflow assignments, task completion roll-up and transfer approvals.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
