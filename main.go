package main

import "crmtasks/cmd"

// @title        CRM Tasks API
// @version      1.0
// @description  Tasks due today and task creation for CRM applications.
// @BasePath     /
func main() {
	cmd.Execute()
}
