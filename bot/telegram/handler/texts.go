package handler

var (
	aliasAdded        = "Successfully added alias"
	aliasDeleted      = "Successfully deleted alias"
	aliasNotOwner     = "You are not the owner of this alias or an administrator"
	aliasNotFoundText = "Could not find alias"
	aliasExistsText   = "An alias with that name already exists in this group"
	aliasAddFailed    = "Failed to add alias"
	aliasUsage        = "Usage: /alias add <name> <text> or /alias remove <name>"

	mustUseInGroup    = "This command must be used in a group chat"
	commandFailedText = "Something went wrong, please try again later"

	pongText = "🏓"

	timezoneUsage   = "Usage: /timezone <IANA zone name>, e.g. /timezone Europe/London"
	timezoneUnknown = "Unknown timezone, expected an IANA zone name like Europe/London"
	timezoneNone    = "No timezone set"
	timezoneSet     = "Timezone set to %s"
	timezoneCurrent = "Your timezone is %s"

	remindUsage   = "Usage: /remind <duration|HH:MM> <text>, e.g. /remind 10m stretch"
	remindBadTime = "Could not parse that time, try a duration like 10m or a clock time like 18:30"
	remindSet     = "Reminder set for %s"

	imageUsage = "Reply to a photo with /image <verbs...>; verbs: invert greyscale fliph flipv " +
		"brighten=<n> contrast=<n> blur=<n> resize=<w:h>"

	yeenFailed = "Could not fetch a hyena right now, try again later"

	statusInfo = `[Status]
Aliases stored: %d
Pending reminders: %d
Commands served: %d`
)
