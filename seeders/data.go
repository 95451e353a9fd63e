package seeders

import "isp-system/pkg/constants"

var rolesData = []struct {
	Code        string
	Name        string
	Description string
}{
	{Code: constants.RoleAdmin, Name: "Администратор платформы", Description: "Управление операторами и всей системой"},
	{Code: constants.RoleOperator, Name: "Оператор", Description: "Администратор интернет-провайдера"},
	{Code: constants.RoleStaff, Name: "Сотрудник", Description: "Поддержка и офис оператора"},
	{Code: constants.RoleTechnician, Name: "Техник", Description: "Выездные работы"},
	{Code: constants.RoleVendor, Name: "Поставщик", Description: "Портал поставщика"},
	{Code: constants.RoleCustomer, Name: "Абонент", Description: "Клиент оператора"},
}

var complaintSubjects = []string{
	"Нет интернета",
	"Низкая скорость вечером",
	"Неверное списание",
	"Роутер перезагружается",
	"Пропадает Wi-Fi",
	"Не приходит счёт",
}

var inventoryNames = map[string][]string{
	"router": {"TP-Link Archer C6", "Keenetic Giga", "MikroTik hAP ac2"},
	"modem":  {"Huawei HG8245H", "ZTE F660"},
	"cable":  {"Кабель UTP cat5e, 305м", "Оптический патчкорд SC/APC 3м"},
	"ont":    {"Huawei EchoLife EG8145V5", "ZTE F601"},
	"switch": {"TP-Link TL-SG108", "MikroTik CRS112"},
	"other":  {"Коннектор RJ-45 (100 шт)", "Кримпер RJ-45"},
}
