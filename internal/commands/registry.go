package commands

// Handlers are wired here rather than in the Command literals: a handler
// body may reference its own Command var (for the usage string), which
// would otherwise form an initialization cycle.
func init() {
	createCommand.Execute = executeCreate
	addTaskCommand.Execute = executeAddTask
	bulkAddTaskCommand.Execute = executeBulkAddTask
	tasksCommand.Execute = executeTasks
	doneCommand.Execute = executeDone
	hideCommand.Execute = executeHide
	unhideCommand.Execute = executeUnhide
	deleteTaskCommand.Execute = executeDeleteTask
	deleteRoadmapCommand.Execute = executeDeleteRoadmap
	emptyRoadmapCommand.Execute = executeEmptyRoadmap
	taskStatsCommand.Execute = executeTaskStats
	myRoadmapsCommand.Execute = executeMyRoadmaps
	showRoadmapCommand.Execute = executeShowRoadmap
	scheduleCommand.Execute = executeSchedule
	autoPostCommand.Execute = executeAutoPost
	helpCommand.Execute = executeHelp
}

// registryOrder fixes the listing order for help output.
var registryOrder = []*Command{
	&createCommand,
	&addTaskCommand,
	&bulkAddTaskCommand,
	&tasksCommand,
	&doneCommand,
	&hideCommand,
	&unhideCommand,
	&deleteTaskCommand,
	&deleteRoadmapCommand,
	&emptyRoadmapCommand,
	&taskStatsCommand,
	&myRoadmapsCommand,
	&showRoadmapCommand,
	&scheduleCommand,
	&autoPostCommand,
	&helpCommand,
}

// Registry maps each verb to its command. Verbs are matched on the first
// token of a message, lowercased.
func Registry() map[string]*Command {
	reg := make(map[string]*Command, len(registryOrder))
	for _, c := range registryOrder {
		reg[c.Name] = c
	}
	return reg
}

// All returns every command in help-listing order.
func All() []*Command {
	out := make([]*Command, len(registryOrder))
	copy(out, registryOrder)
	return out
}
