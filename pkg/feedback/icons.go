package feedback

// IconRoot holds the macOS system icons.
const IconRoot = "/System/Library/CoreServices/CoreTypes.bundle/Contents/Resources"

// System icons. IconError is used for errors the workflow cannot recover
// from; IconWarning for everything less serious.
const (
	IconAccount  = IconRoot + "/Accounts.icns"
	IconBurn     = IconRoot + "/BurningIcon.icns"
	IconClock    = IconRoot + "/Clock.icns"
	IconColor    = IconRoot + "/ProfileBackgroundColor.icns"
	IconEject    = IconRoot + "/EjectMediaIcon.icns"
	IconError    = IconRoot + "/AlertStopIcon.icns"
	IconFavorite = IconRoot + "/ToolbarFavoritesIcon.icns"
	IconGroup    = IconRoot + "/GroupIcon.icns"
	IconHelp     = IconRoot + "/HelpIcon.icns"
	IconHome     = IconRoot + "/HomeFolderIcon.icns"
	IconInfo     = IconRoot + "/ToolbarInfo.icns"
	IconNetwork  = IconRoot + "/GenericNetworkIcon.icns"
	IconNote     = IconRoot + "/AlertNoteIcon.icns"
	IconSettings = IconRoot + "/ToolbarAdvanced.icns"
	IconSwirl    = IconRoot + "/ErasingIcon.icns"
	IconSwitch   = IconRoot + "/General.icns"
	IconSync     = IconRoot + "/Sync.icns"
	IconTrash    = IconRoot + "/TrashIcon.icns"
	IconUser     = IconRoot + "/UserIcon.icns"
	IconWarning  = IconRoot + "/AlertCautionIcon.icns"
	IconWeb      = IconRoot + "/BookmarkIcon.icns"
)
